package fontir

import (
	"fmt"
	"math"

	"github.com/npillmayer/fontbridge/core/font/babelfont"
)

// curveTolerance is the maximum deviation, in font units, of a quadratic
// approximation from the cubic curve it replaces.
const curveTolerance = 1.0

// maxCubicSplits limits the number of quadratic segments per cubic segment.
const maxCubicSplits = 16

type vec struct {
	x, y float64
}

func (a vec) add(b vec) vec        { return vec{a.x + b.x, a.y + b.y} }
func (a vec) sub(b vec) vec        { return vec{a.x - b.x, a.y - b.y} }
func (a vec) scale(s float64) vec  { return vec{a.x * s, a.y * s} }
func (a vec) dist(b vec) float64   { return math.Hypot(a.x-b.x, a.y-b.y) }
func nodeVec(n babelfont.Node) vec { return vec{n.X, n.Y} }

// point is a TrueType outline point in font units.
type point struct {
	x, y int16
	on   bool
}

// contour is a closed TrueType contour.
type contour []point

// --- Bézier math -----------------------------------------------------------

func cubicAt(p [4]vec, t float64) vec {
	mt := 1 - t
	return p[0].scale(mt * mt * mt).
		add(p[1].scale(3 * mt * mt * t)).
		add(p[2].scale(3 * mt * t * t)).
		add(p[3].scale(t * t * t))
}

func cubicDerivative(p [4]vec, t float64) vec {
	mt := 1 - t
	return p[1].sub(p[0]).scale(3 * mt * mt).
		add(p[2].sub(p[1]).scale(6 * mt * t)).
		add(p[3].sub(p[2]).scale(3 * t * t))
}

func quadAt(p0, c, p1 vec, t float64) vec {
	mt := 1 - t
	return p0.scale(mt * mt).add(c.scale(2 * mt * t)).add(p1.scale(t * t))
}

// cubicPiece returns the control points of the part of a cubic between t0
// and t1.
func cubicPiece(p [4]vec, t0, t1 float64) [4]vec {
	q0, q3 := cubicAt(p, t0), cubicAt(p, t1)
	d := (t1 - t0) / 3
	return [4]vec{
		q0,
		q0.add(cubicDerivative(p, t0).scale(d)),
		q3.sub(cubicDerivative(p, t1).scale(d)),
		q3,
	}
}

// cubicToQuads approximates a cubic segment by a spline of quadratic
// segments. The result alternates control point and end point of each
// quadratic; the last entry equals p[3].
func cubicToQuads(p [4]vec, tol float64) []vec {
	for n := 1; n <= maxCubicSplits; n++ {
		pts := make([]vec, 0, 2*n)
		fits := true
		for i := 0; i < n; i++ {
			seg := cubicPiece(p, float64(i)/float64(n), float64(i+1)/float64(n))
			c := seg[1].add(seg[2]).scale(3).sub(seg[0].add(seg[3])).scale(0.25)
			if n < maxCubicSplits && !quadFits(seg, c, tol) {
				fits = false
				break
			}
			pts = append(pts, c, seg[3])
		}
		if fits {
			pts[len(pts)-1] = p[3]
			return pts
		}
	}
	panic("unreachable")
}

func quadFits(seg [4]vec, c vec, tol float64) bool {
	for k := 1; k < 8; k++ {
		t := float64(k) / 8
		if cubicAt(seg, t).dist(quadAt(seg[0], c, seg[3], t)) > tol {
			return false
		}
	}
	return true
}

// --- Paths to contours -----------------------------------------------------

// pathToContour converts a closed babelfont path into a TrueType contour.
// Cubic segments are approximated by quadratic splines, and the contour
// direction is reversed, as TrueType expects clockwise outer contours.
func pathToContour(nodes babelfont.Nodes) (contour, error) {
	start := -1
	for i, n := range nodes {
		if n.IsOnCurve() {
			start = i
			break
		}
	}
	if start < 0 { // closed quadratic spline without on-curve points
		c := make(contour, 0, len(nodes))
		for _, n := range nodes {
			p, err := makePoint(nodeVec(n), false)
			if err != nil {
				return nil, err
			}
			c = append(c, p)
		}
		return reverse(c), nil
	}
	ordered := make(babelfont.Nodes, 0, len(nodes))
	ordered = append(append(ordered, nodes[start:]...), nodes[:start]...)
	var c contour
	var err error
	emit := func(v vec, on bool) {
		if err != nil {
			return
		}
		var p point
		if p, err = makePoint(v, on); err == nil {
			c = append(c, p)
		}
	}
	cur := nodeVec(ordered[0])
	emit(cur, true)
	var offs []vec
	for i := 1; i <= len(ordered); i++ {
		n := ordered[i%len(ordered)]
		if !n.IsOnCurve() {
			offs = append(offs, nodeVec(n))
			continue
		}
		closing := i == len(ordered)
		end := nodeVec(n)
		switch {
		case len(offs) == 0:
			if !closing {
				emit(end, true)
			}
		case n.Type == babelfont.Curve && len(offs) == 2:
			q := cubicToQuads([4]vec{cur, offs[0], offs[1], end}, curveTolerance)
			for j := 0; j < len(q); j += 2 {
				emit(q[j], false)
				if j+2 < len(q) || !closing {
					emit(q[j+1], true)
				}
			}
		case n.Type == babelfont.Curve && len(offs) > 2:
			return nil, fmt.Errorf("cubic segment with %d control points", len(offs))
		default:
			for _, o := range offs {
				emit(o, false)
			}
			if !closing {
				emit(end, true)
			}
		}
		cur = end
		offs = offs[:0]
	}
	if err != nil {
		return nil, err
	}
	return reverse(c), nil
}

func makePoint(v vec, on bool) (point, error) {
	x, y := math.Round(v.x), math.Round(v.y)
	if x < -32768 || x > 32767 || y < -32768 || y > 32767 {
		return point{}, fmt.Errorf("coordinate (%g,%g) out of range", v.x, v.y)
	}
	return point{x: int16(x), y: int16(y), on: on}, nil
}

// reverse reverses the direction of a closed contour, keeping its start
// point.
func reverse(c contour) contour {
	for i, j := 1, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
	return c
}
