// Package plan defines the vertices of the operator DAG. A PlanNode wraps
// exactly one operator and carries the child/parent edges the planner and
// optimizer shape and the executor walks.
package plan

import (
	"github.com/corvusgraph/qengine/pkg/operator"
)

// StreamState tracks a node's position in the pull protocol, as seen from
// its parent: it starts uninitialized, becomes consuming once driven, and
// is marked depleted when its stream runs dry.
type StreamState int

const (
	StreamUninitialized StreamState = iota
	StreamConsuming
	StreamDepleted
)

func (s StreamState) String() string {
	switch s {
	case StreamUninitialized:
		return "uninitialized"
	case StreamConsuming:
		return "consuming"
	case StreamDepleted:
		return "depleted"
	default:
		return "unknown"
	}
}

// PlanNode is one vertex of the operator DAG. It exclusively owns its
// operator; child and parent slices are non-owning back-references kept
// mutually consistent by the mutation helpers below. Ownership of the DAG
// follows child edges from the single root.
type PlanNode struct {
	Op       operator.Operator
	Children []*PlanNode
	Parents  []*PlanNode
	State    StreamState
}

// NewPlanNode wraps an operator in a fresh, unconnected plan node.
func NewPlanNode(op operator.Operator) *PlanNode {
	return &PlanNode{Op: op, State: StreamUninitialized}
}

// ContainsChild reports whether child is already among the node's children.
func (n *PlanNode) ContainsChild(child *PlanNode) bool {
	for _, c := range n.Children {
		if c == child {
			return true
		}
	}
	return false
}

// AddChild appends child to n's children and n to child's parents,
// keeping both edge lists consistent.
func (n *PlanNode) AddChild(child *PlanNode) {
	n.Children = append(n.Children, child)
	child.Parents = append(child.Parents, n)
}

// RemoveChild detaches child from n: the child leaves n's child list and
// n leaves the child's parent list.
func (n *PlanNode) RemoveChild(child *PlanNode) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			break
		}
	}
	for i, p := range child.Parents {
		if p == n {
			child.Parents = append(child.Parents[:i], child.Parents[i+1:]...)
			break
		}
	}
}

// PushInBetween splices onlyChild between n and all of n's current
// children: every child moves under onlyChild, and onlyChild becomes n's
// sole child. Filter pushdown uses this to insert a Filter node above an
// existing operator.
func (n *PlanNode) PushInBetween(onlyChild *PlanNode) {
	for len(n.Children) != 0 {
		c := n.Children[0]
		onlyChild.AddChild(c)
		n.RemoveChild(c)
	}
	n.AddChild(onlyChild)
}

// ReplaceOperator swaps the node's operator, freeing the old one. Used by
// the expand-merge pass to rewrite an ExpandAll into an ExpandInto in
// place, preserving the node's DAG edges.
func (n *PlanNode) ReplaceOperator(op operator.Operator) {
	if n.Op != nil {
		n.Op.Free()
	}
	n.Op = op
}

// Free tears the subtree down post-order: children first, then the node's
// own operator. Diamond shapes introduced by expand-merge are handled by
// freeing each node only once.
func (n *PlanNode) Free() {
	freeNode(n, make(map[*PlanNode]struct{}))
}

func freeNode(n *PlanNode, freed map[*PlanNode]struct{}) {
	if _, done := freed[n]; done {
		return
	}
	freed[n] = struct{}{}

	for _, c := range n.Children {
		freeNode(c, freed)
	}

	if n.Op != nil {
		n.Op.Free()
		n.Op = nil
	}
	n.Children = nil
	n.Parents = nil
}
