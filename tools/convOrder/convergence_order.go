package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file of \"nr,ntheta,dt,feet error,density error\" rows written by gopolar advect")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	f, err := os.Open(csvFile)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	studies, err := readCSV(f)
	if err != nil {
		panic(err)
	}
	dts := make([]float64, 0, len(studies))
	for dt := range studies {
		dts = append(dts, dt)
	}
	sort.Float64s(dts)
	for _, dt := range dts {
		cs := studies[dt]
		cs.Sort()
		fmt.Printf("dt = %g\n", dt)
		for i := range cs.nr {
			fmt.Printf("%d, %d, %v, %v\n", cs.nr[i], cs.nTheta[i], cs.feetErr[i], cs.rhoErr[i])
		}
		fmt.Printf("Order: feet = %5.2f, density = %5.2f\n", Order(cs.nr, cs.feetErr), Order(cs.nr, cs.rhoErr))
	}
}

// ConvergenceStudy holds the errors of one time step over a set of meshes
type ConvergenceStudy struct {
	dt              float64
	nr, nTheta      []int
	feetErr, rhoErr []float64
}

func NewConvergenceStudy(dt float64) *ConvergenceStudy {
	return &ConvergenceStudy{
		dt: dt,
	}
}

func (cs *ConvergenceStudy) Add(nr, nTheta int, feetErr, rhoErr float64) {
	cs.nr = append(cs.nr, nr)
	cs.nTheta = append(cs.nTheta, nTheta)
	cs.feetErr = append(cs.feetErr, feetErr)
	cs.rhoErr = append(cs.rhoErr, rhoErr)
}

func (cs *ConvergenceStudy) Len() int           { return len(cs.nr) }
func (cs *ConvergenceStudy) Less(i, j int) bool { return cs.nr[i] < cs.nr[j] }
func (cs *ConvergenceStudy) Swap(i, j int) {
	cs.nr[i], cs.nr[j] = cs.nr[j], cs.nr[i]
	cs.nTheta[i], cs.nTheta[j] = cs.nTheta[j], cs.nTheta[i]
	cs.feetErr[i], cs.feetErr[j] = cs.feetErr[j], cs.feetErr[i]
	cs.rhoErr[i], cs.rhoErr[j] = cs.rhoErr[j], cs.rhoErr[i]
}

// Sort orders the study by radial resolution
func (cs *ConvergenceStudy) Sort() { sort.Sort(cs) }

// Order is the least squares slope of -log(err) against log(nr)
func Order(nr []int, errs []float64) float64 {
	var x, y []float64
	for i, n := range nr {
		if errs[i] <= 0 {
			continue
		}
		x = append(x, math.Log(float64(n)))
		y = append(y, -math.Log(errs[i]))
	}
	if len(x) < 2 {
		return math.NaN()
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta
}

func readCSV(rd io.Reader) (studies map[float64]*ConvergenceStudy, err error) {
	var (
		records         [][]string
		ok              bool
		cs              *ConvergenceStudy
		dt              float64
		feetErr, rhoErr float64
		nr, nTheta      int
	)
	studies = make(map[float64]*ConvergenceStudy)
	r := csv.NewReader(bufio.NewReader(rd))
	if records, err = r.ReadAll(); err != nil {
		return
	}
	for i, rec := range records {
		if len(rec) != 5 {
			err = fmt.Errorf("row %d has %d fields, want 5", i, len(rec))
			return
		}
		if nr, err = strconv.Atoi(rec[0]); err != nil {
			return
		}
		if nTheta, err = strconv.Atoi(rec[1]); err != nil {
			return
		}
		if dt, err = strconv.ParseFloat(rec[2], 64); err != nil {
			return
		}
		if feetErr, err = strconv.ParseFloat(rec[3], 64); err != nil {
			return
		}
		if rhoErr, err = strconv.ParseFloat(rec[4], 64); err != nil {
			return
		}
		if cs, ok = studies[dt]; !ok {
			cs = NewConvergenceStudy(dt)
			studies[dt] = cs
		}
		cs.Add(nr, nTheta, feetErr, rhoErr)
	}
	return
}
