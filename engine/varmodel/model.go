package varmodel

import (
	"errors"
	"math"
	"sort"
)

// NormLocation is a location with normalized coordinates in [-1, 1].
// Axes at their default (0) are omitted.
type NormLocation map[string]float64

// triple is the support of a master on one axis: lower bound, peak, upper
// bound.
type triple struct {
	lower, peak, upper float64
}

// region is the support of a master, one triple per axis.
type region map[string]triple

// Model is a variation model for a set of master locations.
type Model struct {
	axisOrder    []string
	locations    []NormLocation // sorted
	mapping      []int          // sorted index -> original master index
	supports     []region
	deltaWeights []map[int]float64
}

// NewModel creates a variation model. One of the locations must be the
// default location. axisOrder influences the order in which masters are
// processed; axes not listed are ordered by name.
func NewModel(locations []NormLocation, axisOrder []string) (*Model, error) {
	locs := make([]NormLocation, len(locations))
	for i, loc := range locations {
		locs[i] = loc.compact()
	}
	seen := make(map[string]bool, len(locs))
	hasBase := false
	for _, loc := range locs {
		k := loc.key()
		if seen[k] {
			return nil, errors.New("duplicate master location " + k)
		}
		seen[k] = true
		if len(loc) == 0 {
			hasBase = true
		}
	}
	if !hasBase {
		return nil, errors.New("base master not found")
	}
	m := &Model{axisOrder: axisOrder}
	m.mapping = make([]int, len(locs))
	for i := range m.mapping {
		m.mapping[i] = i
	}
	keyOf := sortKeyFunc(locs, axisOrder)
	keys := make([]sortKey, len(locs))
	for i, loc := range locs {
		keys[i] = keyOf(loc)
	}
	sort.SliceStable(m.mapping, func(i, j int) bool {
		return keys[m.mapping[i]].less(keys[m.mapping[j]])
	})
	m.locations = make([]NormLocation, len(locs))
	for i, orig := range m.mapping {
		m.locations[i] = locs[orig]
	}
	m.computeMasterSupports()
	m.computeDeltaWeights()
	return m, nil
}

func (loc NormLocation) compact() NormLocation {
	c := make(NormLocation, len(loc))
	for k, v := range loc {
		if v != 0 {
			c[k] = v
		}
	}
	return c
}

func (loc NormLocation) axes() []string {
	axes := make([]string, 0, len(loc))
	for a := range loc {
		axes = append(axes, a)
	}
	sort.Strings(axes)
	return axes
}

func (loc NormLocation) key() string {
	s := "{"
	for i, a := range loc.axes() {
		if i > 0 {
			s += " "
		}
		s += a + "=" + formatFloat(loc[a])
	}
	return s + "}"
}

// --- Master ordering -------------------------------------------------------

// sortKey orders masters: fewer axes first, then masters on an axis'
// existing points, then by axis order, sign and distance from the default.
type sortKey struct {
	rank      int
	onPoint   int // negated count of on-point axes
	axisIndex []int
	axes      []string
	signs     []float64
	magnitude []float64
}

func (a sortKey) less(b sortKey) bool {
	if a.rank != b.rank {
		return a.rank < b.rank
	}
	if a.onPoint != b.onPoint {
		return a.onPoint < b.onPoint
	}
	if c := compareInts(a.axisIndex, b.axisIndex); c != 0 {
		return c < 0
	}
	if c := compareStrings(a.axes, b.axes); c != 0 {
		return c < 0
	}
	if c := compareFloats(a.signs, b.signs); c != 0 {
		return c < 0
	}
	return compareFloats(a.magnitude, b.magnitude) < 0
}

func sortKeyFunc(locs []NormLocation, axisOrder []string) func(NormLocation) sortKey {
	axisPoints := make(map[string]map[float64]bool)
	for _, loc := range locs {
		if len(loc) != 1 {
			continue
		}
		for axis, v := range loc {
			if axisPoints[axis] == nil {
				axisPoints[axis] = map[float64]bool{0: true}
			}
			axisPoints[axis][v] = true
		}
	}
	order := make(map[string]int, len(axisOrder))
	for i, a := range axisOrder {
		order[a] = i
	}
	return func(loc NormLocation) sortKey {
		k := sortKey{rank: len(loc)}
		for axis, v := range loc {
			if axisPoints[axis][v] {
				k.onPoint--
			}
		}
		var ordered, rest []string
		for _, a := range axisOrder {
			if _, ok := loc[a]; ok {
				ordered = append(ordered, a)
			}
		}
		for _, a := range loc.axes() {
			if _, ok := order[a]; !ok {
				rest = append(rest, a)
			}
		}
		ordered = append(ordered, rest...)
		for _, a := range ordered {
			idx, ok := order[a]
			if !ok {
				idx = 0x10000
			}
			v := loc[a]
			k.axisIndex = append(k.axisIndex, idx)
			k.axes = append(k.axes, a)
			k.signs = append(k.signs, sign(v))
			k.magnitude = append(k.magnitude, math.Abs(v))
		}
		return k
	}
}

// --- Supports --------------------------------------------------------------

func (m *Model) locationsToRegions() []region {
	minV, maxV := make(map[string]float64), make(map[string]float64)
	for _, loc := range m.locations {
		for a, v := range loc {
			if cur, ok := minV[a]; !ok || v < cur {
				minV[a] = v
			}
			if cur, ok := maxV[a]; !ok || v > cur {
				maxV[a] = v
			}
		}
	}
	regions := make([]region, len(m.locations))
	for i, loc := range m.locations {
		r := make(region, len(loc))
		for a, v := range loc {
			if v > 0 {
				r[a] = triple{0, v, maxV[a]}
			} else {
				r[a] = triple{minV[a], v, 0}
			}
		}
		regions[i] = r
	}
	return regions
}

func (m *Model) computeMasterSupports() {
	regions := m.locationsToRegions()
	m.supports = make([]region, 0, len(regions))
	for i, r := range regions {
		for _, prev := range regions[:i] {
			if !isSubset(prev, r) {
				continue
			}
			relevant := true
			for a, t := range r {
				p, ok := prev[a]
				if !ok || !(p.peak == t.peak || (t.lower < p.peak && p.peak < t.upper)) {
					relevant = false
					break
				}
			}
			if !relevant {
				continue
			}
			// split the box in the direction with the largest range ratio
			best := make(region)
			bestRatio := -1.0
			for _, a := range sortedAxes(prev) {
				val := prev[a].peak
				t := r[a]
				lower, upper := t.lower, t.upper
				var ratio float64
				switch {
				case val < t.peak:
					lower = val
					ratio = (val - t.peak) / (t.lower - t.peak)
				case t.peak < val:
					upper = val
					ratio = (val - t.peak) / (t.upper - t.peak)
				default:
					continue
				}
				if ratio > bestRatio {
					best = make(region)
					bestRatio = ratio
				}
				if ratio == bestRatio {
					best[a] = triple{lower, t.peak, upper}
				}
			}
			for a, t := range best {
				r[a] = t
			}
		}
		m.supports = append(m.supports, r)
	}
}

func isSubset(a, b region) bool {
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

func sortedAxes(r region) []string {
	axes := make([]string, 0, len(r))
	for a := range r {
		axes = append(axes, a)
	}
	sort.Strings(axes)
	return axes
}

func (m *Model) computeDeltaWeights() {
	m.deltaWeights = make([]map[int]float64, len(m.locations))
	for i, loc := range m.locations {
		w := make(map[int]float64)
		for j, s := range m.supports[:i] {
			if sc := supportScalar(loc, s); sc != 0 {
				w[j] = sc
			}
		}
		m.deltaWeights[i] = w
	}
}

// supportScalar returns the influence of a master with support s at
// location loc.
func supportScalar(loc NormLocation, s region) float64 {
	scalar := 1.0
	for a, t := range s {
		if t.peak == 0 || t.lower > t.peak || t.peak > t.upper {
			continue
		}
		if t.lower < 0 && t.upper > 0 {
			continue
		}
		v := loc[a]
		if v == t.peak {
			continue
		}
		if v <= t.lower || t.upper <= v {
			return 0
		}
		if v < t.peak {
			scalar *= (v - t.lower) / (t.peak - t.lower)
		} else {
			scalar *= (v - t.upper) / (t.peak - t.upper)
		}
	}
	return scalar
}

// --- Deltas and interpolation ----------------------------------------------

// Deltas computes the deltas of a vector-valued quantity from its master
// values, given in the original master order. All vectors must have the
// same length.
func (m *Model) Deltas(masterValues [][]float64) ([][]float64, error) {
	if len(masterValues) != len(m.locations) {
		return nil, errors.New("number of master values does not match number of masters")
	}
	n := len(masterValues[0])
	out := make([][]float64, len(m.locations))
	for i, weights := range m.deltaWeights {
		src := masterValues[m.mapping[i]]
		if len(src) != n {
			return nil, errors.New("master values differ in length")
		}
		delta := append([]float64(nil), src...)
		for _, j := range sortedKeys(weights) {
			w := weights[j]
			for k := range delta {
				delta[k] -= out[j][k] * w
			}
		}
		out[i] = delta
	}
	return out, nil
}

// Scalars returns the support scalars of all masters for a location, in
// model order.
func (m *Model) Scalars(loc NormLocation) []float64 {
	sc := make([]float64, len(m.supports))
	for i, s := range m.supports {
		sc[i] = supportScalar(loc, s)
	}
	return sc
}

// InterpolateFromDeltas sums deltas weighted by the scalars for loc.
func (m *Model) InterpolateFromDeltas(loc NormLocation, deltas [][]float64) []float64 {
	if len(deltas) == 0 {
		return nil
	}
	out := make([]float64, len(deltas[0]))
	for i, sc := range m.Scalars(loc) {
		if sc == 0 {
			continue
		}
		for k, d := range deltas[i] {
			out[k] += d * sc
		}
	}
	return out
}

// Interpolate computes the value of a quantity at loc from its master
// values.
func (m *Model) Interpolate(loc NormLocation, masterValues [][]float64) ([]float64, error) {
	deltas, err := m.Deltas(masterValues)
	if err != nil {
		return nil, err
	}
	return m.InterpolateFromDeltas(loc, deltas), nil
}

// --- Helpers ---------------------------------------------------------------

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}

func sortedKeys(m map[int]float64) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func compareInts(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func compareStrings(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}

func compareFloats(a, b []float64) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return len(a) - len(b)
}
