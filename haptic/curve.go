package haptic

import (
	"math"
	"sort"

	"hapticedit/debug"
)

func sortVecs(points []Vec2) {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].X < points[j].X
	})
}

// dedupe drops samples that do not come strictly after the previous one
func dedupe(points []Vec2) []Vec2 {
	if len(points) < 2 {
		return points
	}
	out := points[:1:1]
	for _, p := range points[1:] {
		if p.X <= out[len(out)-1].X {
			debug.Log("import", "dropping sample at %.6f: not after %.6f", p.X, out[len(out)-1].X)
			continue
		}
		out = append(out, p)
	}
	return out
}

// reconcileBounds makes both curves start and end at the same times by
// inserting a point holding the boundary value into the curve that starts
// later or ends earlier. Bounds closer than chainTolerance are snapped onto
// a's instead. An empty curve is filled with zeros at the other curve's
// bounds.
func reconcileBounds(a, b []Vec2) ([]Vec2, []Vec2) {
	if len(a) == 0 && len(b) == 0 {
		return a, b
	}
	if len(a) == 0 {
		a = silentSpan(b)
	}
	if len(b) == 0 {
		b = silentSpan(a)
	}
	snapBounds(a, b)

	switch {
	case a[0].X > b[0].X:
		a = append([]Vec2{{X: b[0].X, Y: a[0].Y}}, a...)
	case b[0].X > a[0].X:
		b = append([]Vec2{{X: a[0].X, Y: b[0].Y}}, b...)
	}

	lastA, lastB := a[len(a)-1], b[len(b)-1]
	switch {
	case lastA.X < lastB.X:
		a = append(a, Vec2{X: lastB.X, Y: lastA.Y})
	case lastB.X < lastA.X:
		b = append(b, Vec2{X: lastA.X, Y: lastB.Y})
	}
	return a, b
}

// snapBounds moves b's first and last points onto a's when they differ by
// rounding only, as happens when each curve's times were written relative
// to a different chunk start. A snap that would reorder b is skipped.
func snapBounds(a, b []Vec2) {
	last := len(b) - 1
	startA, endA := a[0].X, a[len(a)-1].X
	if nearlyEqual(startA, b[0].X) && (last == 0 || startA < b[1].X) {
		b[0].X = startA
	}
	if nearlyEqual(endA, b[last].X) && (last == 0 || b[last-1].X < endA) {
		b[last].X = endA
	}
}

func nearlyEqual(x, y float64) bool {
	return math.Abs(x-y) <= chainTolerance
}

func silentSpan(other []Vec2) []Vec2 {
	first, last := other[0].X, other[len(other)-1].X
	if first == last {
		return []Vec2{{X: first}}
	}
	return []Vec2{{X: first}, {X: last}}
}

// lerp interpolates the value of the line through a and b at x
func lerp(a, b Vec2, x float64) float64 {
	if b.X == a.X {
		return a.Y
	}
	frac := (x - a.X) / (b.X - a.X)
	return a.Y + (b.Y-a.Y)*frac
}
