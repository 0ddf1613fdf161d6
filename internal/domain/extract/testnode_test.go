package extract

import (
	"errors"
	"sync/atomic"
)

// fakeNode is an in-memory tree node that tracks handle acquisition
type fakeNode struct {
	info     NodeInfo
	children []*fakeNode
	failInfo bool

	visits   *atomic.Int32
	acquired *atomic.Int32
	released *atomic.Int32
	order    *[]string
}

type tracker struct {
	visits   atomic.Int32
	acquired atomic.Int32
	released atomic.Int32
	order    []string
}

func (n *fakeNode) Info() (NodeInfo, error) {
	if n.failInfo {
		return NodeInfo{}, errors.New("node unreadable")
	}
	if n.visits != nil {
		n.visits.Add(1)
	}
	if n.order != nil {
		*n.order = append(*n.order, n.info.ClassName)
	}
	return n.info, nil
}

func (n *fakeNode) ChildCount() int { return len(n.children) }

func (n *fakeNode) Child(i int) (Node, error) {
	if i < 0 || i >= len(n.children) {
		return nil, nil
	}
	c := n.children[i]
	if c == nil {
		return nil, nil
	}
	if c.acquired != nil {
		c.acquired.Add(1)
	}
	return c, nil
}

func (n *fakeNode) Release() {
	if n.released != nil {
		n.released.Add(1)
	}
}

// track wires every node of the tree to the same tracker
func track(n *fakeNode, t *tracker) *fakeNode {
	n.visits = &t.visits
	n.acquired = &t.acquired
	n.released = &t.released
	n.order = &t.order
	for _, c := range n.children {
		if c != nil {
			track(c, t)
		}
	}
	return n
}

func textNode(class, text string, children ...*fakeNode) *fakeNode {
	return &fakeNode{
		info:     NodeInfo{ClassName: class, Text: text, HasText: text != ""},
		children: children,
	}
}
