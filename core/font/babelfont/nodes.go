package babelfont

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NodeType is the type of a path node.
type NodeType uint8

const (
	Move NodeType = iota
	Line
	OffCurve
	Curve  // cubic on-curve point
	QCurve // quadratic on-curve point
)

var nodeTypeNames = map[NodeType]string{
	Move:     "m",
	Line:     "l",
	OffCurve: "o",
	Curve:    "c",
	QCurve:   "q",
}

func (t NodeType) String() string {
	return nodeTypeNames[t]
}

// Node is a point of a path.
type Node struct {
	X      float64
	Y      float64
	Type   NodeType
	Smooth bool
}

// IsOnCurve is false for off-curve control points only.
func (n Node) IsOnCurve() bool {
	return n.Type != OffCurve
}

// Nodes is the point list of a path. In JSON it is written in compact form,
// as a string of whitespace-separated "x y type" triples:
//
//	"0 0 l 100 0 l 150 50 o 150 100 o 100 150 cs"
//
// Types are m(ove), l(ine), o(ff-curve), c(ubic) and q(uadratic); a trailing
// s marks a smooth node.
type Nodes []Node

// ParseNodes decodes the compact node notation.
func ParseNodes(s string) (Nodes, error) {
	fields := strings.Fields(s)
	if len(fields)%3 != 0 {
		return nil, fmt.Errorf("node list must consist of x y type triples, has %d fields", len(fields))
	}
	nodes := make(Nodes, 0, len(fields)/3)
	for i := 0; i < len(fields); i += 3 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("node %d: invalid x coordinate %q", i/3, fields[i])
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, fmt.Errorf("node %d: invalid y coordinate %q", i/3, fields[i+1])
		}
		n := Node{X: x, Y: y}
		t := fields[i+2]
		if len(t) == 2 && t[1] == 's' {
			n.Smooth = true
			t = t[:1]
		}
		switch t {
		case "m":
			n.Type = Move
		case "l":
			n.Type = Line
		case "o":
			n.Type = OffCurve
		case "c":
			n.Type = Curve
		case "q":
			n.Type = QCurve
		default:
			return nil, fmt.Errorf("node %d: unknown node type %q", i/3, fields[i+2])
		}
		if n.Smooth && n.Type == OffCurve {
			return nil, fmt.Errorf("node %d: off-curve nodes cannot be smooth", i/3)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// String returns the compact notation of a node list.
func (nodes Nodes) String() string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatCoord(n.X))
		b.WriteByte(' ')
		b.WriteString(formatCoord(n.Y))
		b.WriteByte(' ')
		b.WriteString(n.Type.String())
		if n.Smooth {
			b.WriteByte('s')
		}
	}
	return b.String()
}

func formatCoord(x float64) string {
	if x == 0 { // avoid "-0"
		return "0"
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}

// MarshalJSON writes nodes in compact notation.
func (nodes Nodes) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodes.String())
}

// UnmarshalJSON reads nodes in compact notation.
func (nodes *Nodes) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("nodes must be a string: %w", err)
	}
	n, err := ParseNodes(s)
	if err != nil {
		return err
	}
	*nodes = n
	return nil
}
