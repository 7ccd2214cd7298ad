package tensor

import (
	"fmt"

	"github.com/notargets/gopolar/types"
)

// Indexed is a tensor annotated with one index label per slot
type Indexed struct {
	t   Tensor
	ids []byte
}

// Index labels the slots of t, e.g. Index("ij", J). It panics if the label
// count differs from the rank or a label repeats within one tensor.
func Index(ids string, t Tensor) Indexed {
	if len(ids) != t.rank {
		panic(fmt.Errorf("index pattern %q has %d labels for a rank %d tensor", ids, len(ids), t.rank))
	}
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			if ids[i] == ids[j] {
				panic(fmt.Errorf("index %q repeats within pattern %q", ids[i], ids))
			}
		}
	}
	return Indexed{t: t, ids: []byte(ids)}
}

type occurrence struct {
	op, slot int
}

// Contract performs Einstein summation over every label appearing twice
// across the operands. A summed label must pair one covariant with one
// contravariant slot of the same coordinate system (Cartesian systems pair
// with either). Labels appearing once are the free slots of the result, in
// order of first appearance.
func Contract(ops ...Indexed) (res Tensor, err error) {
	var (
		order  []byte
		occurs = make(map[byte][]occurrence)
		free   []occurrence
		summed [][2]occurrence
	)
	for o, op := range ops {
		for s, id := range op.ids {
			if _, seen := occurs[id]; !seen {
				order = append(order, id)
			}
			occurs[id] = append(occurs[id], occurrence{o, s})
		}
	}
	for _, id := range order {
		occ := occurs[id]
		switch len(occ) {
		case 1:
			free = append(free, occ[0])
		case 2:
			a := ops[occ[0].op].t.sets[occ[0].slot]
			b := ops[occ[1].op].t.sets[occ[1].slot]
			if a.Sys != b.Sys {
				err = fmt.Errorf("index %q contracts %s with %s, which are different coordinate systems",
					id, a, b)
				return
			}
			if !a.Sys.Cartesian() && a.Var == b.Var {
				err = fmt.Errorf("index %q contracts two %s slots of %s", id, a.Var, a.Sys)
				return
			}
			summed = append(summed, [2]occurrence{occ[0], occ[1]})
		default:
			err = fmt.Errorf("index %q appears %d times", id, len(occ))
			return
		}
	}
	if len(free) > MaxRank {
		err = fmt.Errorf("contraction result has rank %d, above %d", len(free), MaxRank)
		return
	}
	sets := make([]types.Basis, len(free))
	for k, f := range free {
		sets[k] = ops[f.op].t.sets[f.slot]
	}
	res = New(sets...)
	var (
		nFree = len(free)
		nSum  = len(summed)
		idx   = make([][]int, len(ops))
	)
	for o, op := range ops {
		idx[o] = make([]int, op.t.rank)
	}
	for fr := 0; fr < 1<<nFree; fr++ {
		for k, f := range free {
			idx[f.op][f.slot] = (fr >> (nFree - 1 - k)) & 1
		}
		var acc float64
		for s := 0; s < 1<<nSum; s++ {
			for k, pair := range summed {
				v := (s >> k) & 1
				idx[pair[0].op][pair[0].slot] = v
				idx[pair[1].op][pair[1].slot] = v
			}
			prod := 1.
			for o, op := range ops {
				prod *= op.t.data[op.t.offset(idx[o])]
			}
			acc += prod
		}
		res.data[fr] = acc
	}
	return
}

// Mul is Contract for patterns fixed at the call site; a malformed pattern panics
func Mul(ops ...Indexed) Tensor {
	res, err := Contract(ops...)
	if err != nil {
		panic(err)
	}
	return res
}
