package analysis

import "math"

// Point is a sample of a polyline
type Point struct {
	X, Y float64
}

// Simplify reduces a polyline with the Ramer-Douglas-Peucker algorithm.
// Points farther than epsilon from the simplified line are kept. The first
// and last points always survive.
func Simplify(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		return append([]Point(nil), points...)
	}

	keep := make([]bool, len(points))
	keep[0], keep[len(points)-1] = true, true
	simplifyRange(points, 0, len(points)-1, epsilon, keep)

	var out []Point
	for i, p := range points {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

func simplifyRange(points []Point, first, last int, epsilon float64, keep []bool) {
	// explicit stack: long clips give deep recursion
	type span struct{ first, last int }
	stack := []span{{first, last}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maxDist, index := 0.0, -1
		for i := s.first + 1; i < s.last; i++ {
			d := perpendicularDistance(points[i], points[s.first], points[s.last])
			if d > maxDist {
				maxDist, index = d, i
			}
		}
		if index >= 0 && maxDist > epsilon {
			keep[index] = true
			stack = append(stack, span{s.first, index}, span{index, s.last})
		}
	}
}

func perpendicularDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / length
}
