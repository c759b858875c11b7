// Package filter implements the where-clause filter tree: a boolean
// expression tree over predicates on pattern bindings. The optimizer
// carves this tree up during filter pushdown, and the Filter operator
// evaluates the carved-out subtrees against the current bindings.
package filter

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// Kind distinguishes predicate leaves from AND/OR condition nodes.
type Kind int

const (
	Predicate Kind = iota
	Condition
)

// Node is one node of a filter tree. Predicate leaves compare
// alias.property against a constant or against another alias.property;
// condition nodes join two subtrees with AND or OR.
type Node struct {
	Kind Kind

	// Predicate fields.
	Alias     string
	Property  string
	Op        ast.CompareOp
	Varying   bool // compares two properties instead of a constant
	RAlias    string
	RProperty string
	Value     graphmodel.Value

	// Condition fields.
	Left    *Node
	Right   *Node
	Logical ast.LogicalOp
}

// Build translates a where clause into a filter tree. A nil where clause
// yields a nil tree.
func Build(where *ast.WhereClause) (*Node, error) {
	if where == nil || where.Filters == nil {
		return nil, nil
	}
	return buildNode(where.Filters)
}

func buildNode(fn *ast.FilterNode) (*Node, error) {
	switch fn.Kind {
	case ast.FilterPredicate:
		n := &Node{
			Kind:     Predicate,
			Alias:    fn.Alias,
			Property: fn.Property,
			Op:       fn.Op,
		}
		if fn.ValueKind == ast.CompareVarying {
			n.Varying = true
			n.RAlias = fn.RAlias
			n.RProperty = fn.RProperty
			return n, nil
		}
		v, err := graphmodel.ValueFrom(fn.Value)
		if err != nil {
			return nil, fmt.Errorf("predicate %s.%s: %w", fn.Alias, fn.Property, err)
		}
		n.Value = v
		return n, nil

	case ast.FilterCondition:
		left, err := buildNode(fn.Left)
		if err != nil {
			return nil, err
		}
		right, err := buildNode(fn.Right)
		if err != nil {
			return nil, err
		}
		return &Node{Kind: Condition, Left: left, Logical: fn.Logical, Right: right}, nil

	default:
		return nil, fmt.Errorf("unknown filter node kind %d", fn.Kind)
	}
}

// Bindings is the set of pattern aliases resolved at some point of the
// execution plan.
type Bindings map[string]struct{}

// NewBindings builds a binding set from alias names.
func NewBindings(aliases ...string) Bindings {
	b := make(Bindings, len(aliases))
	for _, a := range aliases {
		b[a] = struct{}{}
	}
	return b
}

// Add inserts the given aliases into the set.
func (b Bindings) Add(aliases ...string) {
	for _, a := range aliases {
		b[a] = struct{}{}
	}
}

// Contains reports whether the alias is in the set.
func (b Bindings) Contains(alias string) bool {
	_, ok := b[alias]
	return ok
}

// applicable reports whether every alias the predicate references is bound.
func (n *Node) applicable(bindings Bindings) bool {
	if !bindings.Contains(n.Alias) {
		return false
	}
	if n.Varying && !bindings.Contains(n.RAlias) {
		return false
	}
	return true
}

// ContainsApplicable reports whether at least one predicate in the tree has
// all of its referenced aliases in bindings. A nil tree contains nothing.
func ContainsApplicable(root *Node, bindings Bindings) bool {
	if root == nil {
		return false
	}
	if root.Kind == Predicate {
		return root.applicable(bindings)
	}
	return ContainsApplicable(root.Left, bindings) || ContainsApplicable(root.Right, bindings)
}

// MinTree extracts the largest subtree of root all of whose predicates are
// satisfied by the available bindings. The returned tree shares no nodes
// with root. Returns nil when no predicate applies.
func MinTree(root *Node, bindings Bindings) *Node {
	if root == nil {
		return nil
	}

	if root.Kind == Predicate {
		if !root.applicable(bindings) {
			return nil
		}
		clone := *root
		return &clone
	}

	left := MinTree(root.Left, bindings)
	right := MinTree(root.Right, bindings)
	switch {
	case left != nil && right != nil:
		return &Node{Kind: Condition, Left: left, Logical: root.Logical, Right: right}
	case left != nil:
		return left
	default:
		return right
	}
}

// RemoveApplicable removes every predicate satisfied by the bindings from
// the tree, collapsing condition nodes left with a single child, and
// returns the new root. Returns nil when the whole tree was consumed.
//
// MinTree and RemoveApplicable are the extraction/removal pair of filter
// pushdown: calling them with the same bindings guarantees each predicate
// is placed exactly once.
func RemoveApplicable(root *Node, bindings Bindings) *Node {
	if root == nil {
		return nil
	}

	if root.Kind == Predicate {
		if root.applicable(bindings) {
			return nil
		}
		return root
	}

	root.Left = RemoveApplicable(root.Left, bindings)
	root.Right = RemoveApplicable(root.Right, bindings)
	switch {
	case root.Left == nil && root.Right == nil:
		return nil
	case root.Left == nil:
		return root.Right
	case root.Right == nil:
		return root.Left
	default:
		return root
	}
}

// Predicates returns every predicate leaf of the tree in left-to-right
// order.
func Predicates(root *Node) []*Node {
	if root == nil {
		return nil
	}
	if root.Kind == Predicate {
		return []*Node{root}
	}
	return append(Predicates(root.Left), Predicates(root.Right)...)
}

// String renders the tree for logs and plan debugging.
func (n *Node) String() string {
	if n == nil {
		return "<empty>"
	}
	if n.Kind == Predicate {
		if n.Varying {
			return fmt.Sprintf("%s.%s %s %s.%s", n.Alias, n.Property, n.Op, n.RAlias, n.RProperty)
		}
		return fmt.Sprintf("%s.%s %s %s", n.Alias, n.Property, n.Op, n.Value)
	}
	op := "AND"
	if n.Logical == ast.Or {
		op = "OR"
	}
	return fmt.Sprintf("(%s %s %s)", n.Left, op, n.Right)
}
