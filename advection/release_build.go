//go:build release

package advection

func init() { AssertOPoint = false }
