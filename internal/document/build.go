package document

import (
	"fmt"

	"github.com/sketchd/sketchd/internal/shape"
)

// Shape spec type tags accepted at the input boundary.
const (
	TypeCircle = "circle"
	TypeRect   = "rectangle"
	TypeGroup  = "group"
)

// ShapeSpec is the wire form of a shape construction request. Groups
// nest recursively through Children.
type ShapeSpec struct {
	Type     string      `json:"type"`
	X        int         `json:"x"`
	Y        int         `json:"y"`
	R        int         `json:"r,omitempty"`
	Width    int         `json:"width,omitempty"`
	Height   int         `json:"height,omitempty"`
	Children []ShapeSpec `json:"children,omitempty"`
}

// BuildShape constructs a shape tree from a spec. All validation happens
// here, at the input boundary: invalid dimensions or unknown types are
// rejected before anything reaches the document, so the core only ever
// holds valid shapes.
func BuildShape(spec ShapeSpec) (shape.Shape, error) {
	switch spec.Type {
	case TypeCircle:
		c, err := shape.NewCircle(spec.X, spec.Y, spec.R)
		if err != nil {
			return nil, fmt.Errorf("circle: %w", err)
		}
		return c, nil

	case TypeRect:
		r, err := shape.NewRect(spec.X, spec.Y, spec.Width, spec.Height)
		if err != nil {
			return nil, fmt.Errorf("rectangle: %w", err)
		}
		return r, nil

	case TypeGroup:
		g := shape.NewGroup(spec.X, spec.Y)
		for i, childSpec := range spec.Children {
			child, err := BuildShape(childSpec)
			if err != nil {
				return nil, fmt.Errorf("group child %d: %w", i, err)
			}
			g.Add(child)
		}
		return g, nil

	default:
		return nil, fmt.Errorf("unknown shape type %q", spec.Type)
	}
}
