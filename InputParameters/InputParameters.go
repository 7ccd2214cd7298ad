package InputParameters

import (
	"fmt"
	"math"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type SimulationParameters struct {
	Title string `yaml:"Title"`
	// Mesh
	RMin       float64 `yaml:"RMin"`
	RMax       float64 `yaml:"RMax"`
	NrCells    int     `yaml:"NrCells"`
	NTheta     int     `yaml:"NTheta"`
	Refinement int     `yaml:"Refinement"` // Multiplies NrCells and NTheta
	// Mapping
	Mapping    string  `yaml:"Mapping"` // circular, czarny or discrete
	Epsilon    float64 `yaml:"Epsilon"`
	Elongation float64 `yaml:"Elongation"`
	// Time
	Dt        float64 `yaml:"Dt"`
	FinalTime float64 `yaml:"FinalTime"`
	// Scheme
	PredCorr    string `yaml:"PredCorr"`    // rk2, explicit or implicit
	TimeStepper string `yaml:"TimeStepper"` // euler, rk2, rk3, rk4 or cn
	// Perturbation
	RMinus    float64 `yaml:"RMinus"`
	RPlus     float64 `yaml:"RPlus"`
	Charge    float64 `yaml:"Charge"`
	Mode      int     `yaml:"Mode"`
	Amplitude float64 `yaml:"Amplitude"`
	// Diagnostics
	OutputEvery int           `yaml:"OutputEvery"`
	Badger      string        `yaml:"Badger"` // Snapshot directory, "memory" for an in memory store
	Influx      *InfluxParams `yaml:"Influx"`
}

type InfluxParams struct {
	URL    string `yaml:"URL"`
	Token  string `yaml:"Token"`
	Org    string `yaml:"Org"`
	Bucket string `yaml:"Bucket"`
}

func NewSimulationParameters() *SimulationParameters {
	return &SimulationParameters{
		Title:       "Rigid rotation",
		RMin:        0,
		RMax:        1,
		NrCells:     20,
		NTheta:      40,
		Refinement:  1,
		Mapping:     "circular",
		Epsilon:     0.3,
		Elongation:  1.4,
		Dt:          0.1,
		FinalTime:   0.8,
		PredCorr:    "explicit",
		TimeStepper: "rk3",
		RMinus:      0.45,
		RPlus:       0.5,
		Mode:        9,
		Amplitude:   1.e-4,
		OutputEvery: 1,
	}
}

// Parse overlays the YAML in data on the current values
func (ip *SimulationParameters) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	return ip.Validate()
}

func (ip *SimulationParameters) Validate() error {
	switch {
	case ip.RMin < 0 || ip.RMax <= ip.RMin:
		return fmt.Errorf("invalid radial range [%g, %g]", ip.RMin, ip.RMax)
	case ip.NrCells < 3 || ip.NTheta < 4:
		return fmt.Errorf("mesh of %d x %d cells is too coarse", ip.NrCells, ip.NTheta)
	case ip.Refinement < 1:
		return fmt.Errorf("refinement must be at least 1, have %d", ip.Refinement)
	case ip.Dt <= 0 || ip.FinalTime < 0:
		return fmt.Errorf("invalid time parameters dt = %g, final time = %g", ip.Dt, ip.FinalTime)
	}
	switch ip.Mapping {
	case "circular", "czarny", "discrete":
	default:
		return fmt.Errorf("unknown mapping %q", ip.Mapping)
	}
	return nil
}

// Mesh returns the refined mesh size
func (ip *SimulationParameters) Mesh() (nrCells, nTheta int) {
	return ip.NrCells * ip.Refinement, ip.NTheta * ip.Refinement
}

// Steps is the number of steps of Dt that reach FinalTime
func (ip *SimulationParameters) Steps() int { return int(math.Round(ip.FinalTime / ip.Dt)) }

func (ip *SimulationParameters) Print() {
	nr, nt := ip.Mesh()
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%8.5f,%8.5f]\t= Radial Range\n", ip.RMin, ip.RMax)
	fmt.Printf("[%d x %d]\t\t= Mesh\n", nr, nt)
	fmt.Printf("[%s]\t\t= Mapping\n", ip.Mapping)
	if ip.Mapping != "circular" {
		fmt.Printf("%8.5f\t\t= Epsilon\n", ip.Epsilon)
		fmt.Printf("%8.5f\t\t= Elongation\n", ip.Elongation)
	}
	fmt.Printf("%8.5f\t\t= Dt\n", ip.Dt)
	fmt.Printf("%8.5f\t\t= FinalTime\n", ip.FinalTime)
	fmt.Printf("[%s/%s]\t\t= Predictor-Corrector/Time Stepper\n", ip.PredCorr, ip.TimeStepper)
}
