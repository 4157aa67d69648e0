package mandel

// DefaultEscapeRadius is the magnitude past which an orbit is known to diverge.
const DefaultEscapeRadius = 2.0

// EscapeCount runs z <- z² + c starting from z = c and returns the first
// iteration n at which |z| > 2, or maxIter if the orbit stays bounded.
// The magnitude is tested before the update of step n.
func EscapeCount(c complex128, maxIter int) int {
	return escape(real(c), imag(c), maxIter, DefaultEscapeRadius*DefaultEscapeRadius)
}

// Evaluator is an escape-time evaluator with a configurable radius.
// The zero value uses DefaultEscapeRadius.
type Evaluator struct {
	Radius float64
}

// Count is EscapeCount with e's radius.
func (e Evaluator) Count(c complex128, maxIter int) int {
	return escape(real(c), imag(c), maxIter, e.radius2())
}

func (e Evaluator) radius2() float64 {
	r := e.Radius
	if r <= 0 {
		r = DefaultEscapeRadius
	}
	return r * r
}

// escape compares squared magnitude to avoid a sqrt per step.
// Overflow to ±Inf escapes on the next comparison; NaN never compares
// greater, so the loop is still bounded by maxIter. A cap below 1 runs no
// iterations and returns 0.
func escape(cre, cim float64, maxIter int, r2 float64) int {
	if maxIter < 1 {
		return 0
	}
	zre, zim := cre, cim
	for n := 0; n < maxIter; n++ {
		re2, im2 := zre*zre, zim*zim
		if re2+im2 > r2 {
			return n
		}
		zim = 2*zre*zim + cim
		zre = re2 - im2 + cre
	}
	return maxIter
}
