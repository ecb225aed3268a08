// Package solver provides bounded scalar root-finding for the
// internal-rate-of-return calculation.
package solver

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
)

const (
	maxIterations = 1000
	tolerance     = 1e-10
)

// FindRoot runs the solver chain: a bracketed Brent search over [a, b]
// first, then a Newton iteration from seed when the bracket fails.
// Returns ok=false when neither converges; it never panics on a
// pathological objective.
func FindRoot(f func(float64) float64, a, b, seed float64) (float64, bool) {
	if root, ok := Brent(f, a, b); ok {
		return root, true
	}
	return Newton(f, seed)
}

// Brent finds a root of f within [a, b] using Brent's method: inverse
// quadratic interpolation where it helps, secant otherwise, bisection as
// the safety net. Requires a sign change over the bracket.
func Brent(f func(float64) float64, a, b float64) (float64, bool) {
	fa, fb := f(a), f(b)
	if math.IsNaN(fa) || math.IsNaN(fb) || fa*fb > 0 {
		return 0, false
	}
	if fa == 0 {
		return a, true
	}
	if fb == 0 {
		return b, true
	}

	// Keep b as the better estimate
	if math.Abs(fa) < math.Abs(fb) {
		a, b = b, a
		fa, fb = fb, fa
	}

	c, fc := a, fa
	var d float64
	bisected := true

	for i := 0; i < maxIterations; i++ {
		if fb == 0 || math.Abs(b-a) < tolerance {
			return b, true
		}

		var s float64
		if fa != fc && fb != fc {
			// Inverse quadratic interpolation
			s = a*fb*fc/((fa-fb)*(fa-fc)) +
				b*fa*fc/((fb-fa)*(fb-fc)) +
				c*fa*fb/((fc-fa)*(fc-fb))
		} else {
			// Secant step
			s = b - fb*(b-a)/(fb-fa)
		}

		// Fall back to bisection when the interpolated point is useless
		bound := (3*a + b) / 4
		inBounds := (s > bound && s < b) || (s < bound && s > b)
		switch {
		case !inBounds,
			bisected && math.Abs(s-b) >= math.Abs(b-c)/2,
			!bisected && math.Abs(s-b) >= math.Abs(c-d)/2,
			bisected && math.Abs(b-c) < tolerance,
			!bisected && math.Abs(c-d) < tolerance:
			s = (a + b) / 2
			bisected = true
		default:
			bisected = false
		}

		fs := f(s)
		if math.IsNaN(fs) {
			return 0, false
		}

		d = c
		c, fc = b, fb
		if fa*fs < 0 {
			b, fb = s, fs
		} else {
			a, fa = s, fs
		}
		if math.Abs(fa) < math.Abs(fb) {
			a, b = b, a
			fa, fb = fb, fa
		}
	}

	return 0, false
}

// Newton iterates x -= f(x)/f'(x) from guess, with the derivative estimated
// numerically via central differences.
func Newton(f func(float64) float64, guess float64) (float64, bool) {
	x := guess

	for i := 0; i < maxIterations; i++ {
		fx := f(x)
		if math.IsNaN(fx) || math.IsInf(fx, 0) {
			return 0, false
		}
		if math.Abs(fx) < tolerance {
			return x, true
		}

		dfx := fd.Derivative(f, x, nil)
		if dfx == 0 || math.IsNaN(dfx) || math.IsInf(dfx, 0) {
			return 0, false
		}

		step := fx / dfx
		x -= step
		if math.Abs(step) < tolerance {
			return x, true
		}
	}

	return 0, false
}
