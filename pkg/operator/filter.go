package operator

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/filter"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// Filter evaluates a filter subtree against the current bindings. It emits
// OK when the tree holds and Refresh when it does not, so the executor
// pulls the next upstream tuple either way; a passing tuple is emitted
// exactly once.
type Filter struct {
	tree *filter.Node

	// fresh is armed by Reset, which the executor calls right before
	// pulling new upstream data. It prevents re-evaluating (and
	// re-emitting) a stale binding.
	fresh   bool
	lastErr error
}

// NewFilter creates a filter over the given tree.
func NewFilter(tree *filter.Node) (*Filter, error) {
	if tree == nil {
		return nil, fmt.Errorf("filter tree cannot be nil")
	}
	return &Filter{tree: tree}, nil
}

func (f *Filter) Type() Type         { return TypeFilter }
func (f *Filter) Name() string       { return "Filter" }
func (f *Filter) Modifies() []string { return nil }

// Tree returns the filter subtree this operator evaluates.
func (f *Filter) Tree() *filter.Node { return f.tree }

func (f *Filter) Consume(g *graphmodel.QueryGraph) Result {
	if !f.fresh {
		return Refresh
	}
	f.fresh = false

	pass, err := filter.Evaluate(f.tree, g)
	if err != nil {
		f.lastErr = err
		return Err
	}
	if !pass {
		return Refresh
	}
	return OK
}

func (f *Filter) Reset() Result {
	f.fresh = true
	return OK
}

func (f *Filter) Free() {
	f.tree = nil
}

// LastError returns the evaluation error behind the last Err result.
func (f *Filter) LastError() error {
	return f.lastErr
}
