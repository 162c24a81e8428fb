// Package curve evaluates Bezier curves of any degree and synthesizes jigsaw
// piece outlines from them.
package curve

import "math"

// Vector is satisfied by both r2.Point and r3.Vector, so the same evaluation
// code serves planar outlines and spatial curves.
type Vector[T any] interface {
	Add(T) T
	Mul(float64) T
}

// Evaluate the Bezier curve with the given control points at t, using the
// Bernstein basis:
//
//	B(t) = Σ C(n,i) (1-t)^(n-i) t^i P_i,  n = len(controlPoints)-1
//
// t is not clamped; values outside [0, 1] extrapolate the curve. An empty
// control polygon evaluates to the zero point.
func Evaluate[T Vector[T]](cache *BinomialCache, controlPoints []T, t float64) T {
	var result T
	if len(controlPoints) == 0 {
		return result
	}
	if cache == nil {
		cache = DefaultCache
	}
	n := len(controlPoints) - 1
	row := cache.Row(n)
	for i, p := range controlPoints {
		// math.Pow(0, 0) is 1, which keeps the endpoints exact
		basis := row[i] * math.Pow(1-t, float64(n-i)) * math.Pow(t, float64(i))
		if i == 0 {
			result = p.Mul(basis)
		} else {
			result = result.Add(p.Mul(basis))
		}
	}
	return result
}

// Closed form of the quadratic curve.
func Quadratic[T Vector[T]](p0, p1, p2 T, t float64) T {
	u := 1 - t
	return p0.Mul(u * u).Add(p1.Mul(2 * u * t)).Add(p2.Mul(t * t))
}

// Sample the curve at segments+1 uniform parameter steps, from t=0 to t=1
// inclusive. With segments <= 0 there is no step to take, and the result is
// just the start point.
func Sample[T Vector[T]](cache *BinomialCache, controlPoints []T, segments int) []T {
	if len(controlPoints) == 0 {
		return nil
	}
	if segments <= 0 {
		return []T{controlPoints[0]}
	}
	samples := make([]T, segments+1)
	for i := 0; i <= segments; i++ {
		samples[i] = Evaluate(cache, controlPoints, float64(i)/float64(segments))
	}
	return samples
}
