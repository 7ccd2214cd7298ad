package utils

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelDegree is the number of partitions grid loops are split into
var ParallelDegree = runtime.NumCPU()

// SetParallelDegree limits the partition count to procLimit, or to the CPU
// count when procLimit is 0
func SetParallelDegree(procLimit int) {
	if procLimit != 0 {
		ParallelDegree = procLimit
	} else {
		ParallelDegree = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(runtime.NumCPU())
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree > maxIndex {
		ParallelDegree = max(maxIndex, 1)
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// Split one dimension into ParallelDegree pieces with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// ParallelFor calls fn(k) for every k in [0,n), one goroutine per partition.
// Calls within a dispatch must not depend on each other.
func ParallelFor(n int, fn func(k int)) {
	if n == 0 {
		return
	}
	var (
		pm = NewPartitionMap(ParallelDegree, n)
		eg errgroup.Group
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		kMin, kMax := pm.GetBucketRange(np)
		eg.Go(func() error {
			for k := kMin; k < kMax; k++ {
				fn(k)
			}
			return nil
		})
	}
	_ = eg.Wait()
}

// ParallelSum reduces fn(k) over [0,n). Partial sums are combined in
// partition order so the result only depends on ParallelDegree.
func ParallelSum(n int, fn func(k int) float64) (sum float64) {
	if n == 0 {
		return
	}
	var (
		pm       = NewPartitionMap(ParallelDegree, n)
		partials = make([]float64, pm.ParallelDegree)
		eg       errgroup.Group
	)
	for np := 0; np < pm.ParallelDegree; np++ {
		np := np
		kMin, kMax := pm.GetBucketRange(np)
		eg.Go(func() error {
			for k := kMin; k < kMax; k++ {
				partials[np] += fn(k)
			}
			return nil
		})
	}
	_ = eg.Wait()
	for _, p := range partials {
		sum += p
	}
	return
}
