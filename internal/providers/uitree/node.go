package uitree

import (
	"errors"
	"sync/atomic"

	"github.com/GriffinCanCode/uicapture/internal/domain/extract"
)

// ErrUnreadable is returned by Info on nodes marked unreadable
var ErrUnreadable = errors.New("node data unavailable")

// Node is one node of a dumped tree
type Node struct {
	Text        *string      `json:"text,omitempty" yaml:"text,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Hint        string       `json:"hint,omitempty" yaml:"hint,omitempty"`
	ClassName   string       `json:"className,omitempty" yaml:"className,omitempty"`
	PackageName string       `json:"packageName,omitempty" yaml:"packageName,omitempty"`
	WindowID    int32        `json:"windowId,omitempty" yaml:"windowId,omitempty"`
	Bounds      extract.Rect `json:"bounds" yaml:"bounds"`
	Clickable   bool         `json:"clickable,omitempty" yaml:"clickable,omitempty"`
	Editable    bool         `json:"editable,omitempty" yaml:"editable,omitempty"`
	Password    bool         `json:"password,omitempty" yaml:"password,omitempty"`
	Unreadable  bool         `json:"unreadable,omitempty" yaml:"unreadable,omitempty"`
	Children    []*Node      `json:"children,omitempty" yaml:"children,omitempty"`

	handles *atomic.Int64
}

var _ extract.Node = (*Node)(nil)

// Info implements extract.Node
func (n *Node) Info() (extract.NodeInfo, error) {
	if n.Unreadable {
		return extract.NodeInfo{}, ErrUnreadable
	}
	info := extract.NodeInfo{
		Description: n.Description,
		Hint:        n.Hint,
		ClassName:   n.ClassName,
		PackageName: n.PackageName,
		WindowID:    n.WindowID,
		Bounds:      n.Bounds,
		Clickable:   n.Clickable,
		Editable:    n.Editable,
		Password:    n.Password,
	}
	if n.Text != nil {
		info.Text = *n.Text
		info.HasText = true
	}
	return info, nil
}

// ChildCount implements extract.Node
func (n *Node) ChildCount() int {
	return len(n.Children)
}

// Child implements extract.Node. A null entry is a vanished child.
func (n *Node) Child(i int) (extract.Node, error) {
	if i < 0 || i >= len(n.Children) || n.Children[i] == nil {
		return nil, nil
	}
	c := n.Children[i]
	if n.handles != nil {
		c.handles = n.handles
		n.handles.Add(1)
	}
	return c, nil
}

// Release implements extract.Node
func (n *Node) Release() {
	if n.handles != nil {
		n.handles.Add(-1)
	}
}

// Track counts outstanding child handles acquired below n.
// The returned counter returns to zero once every handle is released.
func (n *Node) Track() *atomic.Int64 {
	n.handles = new(atomic.Int64)
	return n.handles
}

// String returns a pointer to s, for building trees in code
func String(s string) *string {
	return &s
}
