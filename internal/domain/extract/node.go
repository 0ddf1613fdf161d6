package extract

import "fmt"

// Rect is a screen-space rectangle in pixels
type Rect struct {
	Left   int32 `json:"left" yaml:"left"`
	Top    int32 `json:"top" yaml:"top"`
	Right  int32 `json:"right" yaml:"right"`
	Bottom int32 `json:"bottom" yaml:"bottom"`
}

// CenterX returns the horizontal centre of the rectangle
func (r Rect) CenterX() int32 { return int32((int64(r.Left) + int64(r.Right)) >> 1) }

// CenterY returns the vertical centre of the rectangle
func (r Rect) CenterY() int32 { return int32((int64(r.Top) + int64(r.Bottom)) >> 1) }

// Width returns the rectangle width
func (r Rect) Width() int32 { return r.Right - r.Left }

// Height returns the rectangle height
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// NodeInfo is the readable state of one UI node.
// HasText distinguishes an absent text from an empty one.
type NodeInfo struct {
	Text        string
	HasText     bool
	Description string
	Hint        string
	ClassName   string
	PackageName string
	WindowID    int32
	Bounds      Rect
	Clickable   bool
	Editable    bool
	Password    bool
}

// Node is a handle onto one node of the host's UI tree
type Node interface {
	// Info reads the node's current state.
	Info() (NodeInfo, error)

	// ChildCount returns the number of children the node reports.
	ChildCount() int

	// Child acquires the i-th child. A nil node with a nil error means the
	// child disappeared since ChildCount was read.
	Child(i int) (Node, error)

	// Release returns the handle to the host. Safe to call once per acquired handle.
	Release()
}

// forEachChild acquires the first limit children of n in order, hands each to
// fn and releases it afterwards, also when fn fails or panics.
func forEachChild(n Node, limit int, fn func(Node) error) error {
	for i := 0; i < limit; i++ {
		child, err := n.Child(i)
		if err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
		if child == nil {
			continue
		}
		if err := visit(child, fn); err != nil {
			return err
		}
	}
	return nil
}

func visit(child Node, fn func(Node) error) error {
	defer child.Release()
	return fn(child)
}
