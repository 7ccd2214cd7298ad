package poisson

import (
	"fmt"

	"gonum.org/v1/gonum/lapack/gonum"
)

// Tridiagonal solves the tridiagonal system with sub, diag and sup diagonals
// for every right hand side, by Gaussian elimination with partial pivoting.
// sub[0] and sup[n-1] are ignored and the inputs are left untouched.
func Tridiagonal(sub, diag, sup []float64, rhs ...[]float64) (x [][]float64, err error) {
	var (
		n    = len(diag)
		nrhs = len(rhs)
	)
	if len(sub) != n || len(sup) != n {
		err = fmt.Errorf("tridiagonal system of order %d with bands %d and %d", n, len(sub), len(sup))
		return
	}
	for k, b := range rhs {
		if len(b) != n {
			err = fmt.Errorf("tridiagonal system of order %d with right hand side %d of length %d", n, k, len(b))
			return
		}
	}
	x = make([][]float64, nrhs)
	for k := range x {
		x[k] = make([]float64, n)
	}
	if n == 0 || nrhs == 0 {
		return
	}
	var (
		dl = append([]float64(nil), sub[1:]...)
		d  = append([]float64(nil), diag...)
		du = append([]float64(nil), sup[:n-1]...)
		b  = make([]float64, n*nrhs)
	)
	for i := 0; i < n; i++ {
		for k := range rhs {
			b[i*nrhs+k] = rhs[k][i]
		}
	}
	if !(gonum.Implementation{}).Dgtsv(n, nrhs, dl, d, du, b, nrhs) {
		err = fmt.Errorf("singular tridiagonal system of order %d", n)
		return
	}
	for i := 0; i < n; i++ {
		for k := range x {
			x[k][i] = b[i*nrhs+k]
		}
	}
	return
}
