// Package executor drives an operator DAG with a pull-based,
// single-threaded cooperative protocol. The root repeatedly requests a
// tuple; requests propagate down the child edges, leaves read from
// storage, and data propagates upward through the shared bindings of the
// query graph.
package executor

import (
	"context"

	"github.com/corvusgraph/qengine/pkg/errors"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
	"github.com/corvusgraph/qengine/pkg/operator"
	"github.com/corvusgraph/qengine/pkg/plan"
)

// ExecuteNode advances one node: it consumes the node's operator and, on
// Refresh, resets it and pulls fresh data from its child streams before
// retrying. Returns OK when a tuple was produced, Depleted when the
// node's stream is exhausted, Err on failure.
func ExecuteNode(node *plan.PlanNode, g *graphmodel.QueryGraph) operator.Result {
	for {
		node.State = plan.StreamConsuming
		res := node.Op.Consume(g)

		if res != operator.Refresh {
			if res == operator.Depleted {
				node.State = plan.StreamDepleted
			}
			return res
		}

		// The operator exhausted its current bindings; re-arm it and
		// feed it new upstream data.
		if node.Op.Reset() != operator.OK {
			return operator.Err
		}
		if pulled := PullFromStreams(node, g); pulled != operator.OK {
			return pulled
		}
	}
}

// PullFromStreams coordinates a node's child streams as a Cartesian
// product, the left-most stream advancing fastest:
//
//  1. The first child (left to right) able to produce advances.
//  2. Streams to its right that never produced are initialized.
//  3. Streams to its left have already yielded their current values; each
//     is reset from scratch, deepest descendants included, and re-driven
//     so the outer-times-inner product continues correctly.
//
// Returns Depleted when no child can produce, Err when a reset or
// re-drive fails.
func PullFromStreams(source *plan.PlanNode, g *graphmodel.QueryGraph) operator.Result {
	streamIdx := 0
	for ; streamIdx < len(source.Children); streamIdx++ {
		if ExecuteNode(source.Children[streamIdx], g) == operator.OK {
			break
		}
	}

	// All streams are depleted.
	if streamIdx == len(source.Children) {
		return operator.Depleted
	}

	// Pull from all uninitialized streams to the right.
	for i := streamIdx + 1; i < len(source.Children); i++ {
		stream := source.Children[i]
		if stream.State == plan.StreamUninitialized {
			if ExecuteNode(stream, g) != operator.OK {
				return operator.Depleted
			}
		}
	}

	// Reset and re-drive the depleted streams to the left.
	for streamIdx--; streamIdx >= 0; streamIdx-- {
		stream := source.Children[streamIdx]
		if ResetStream(stream) != operator.OK {
			return operator.Err
		}
		if ExecuteNode(stream, g) != operator.OK {
			return operator.Err
		}
	}

	return operator.OK
}

// ResetStream resets a whole subtree, the stream's operator first and
// every descendant after it.
func ResetStream(stream *plan.PlanNode) operator.Result {
	if stream.Op.Reset() != operator.OK {
		return operator.Err
	}
	for _, child := range stream.Children {
		if ResetStream(child) != operator.OK {
			return operator.Err
		}
	}
	return operator.OK
}

// Run drives the root until its stream ends. The context is consulted
// between pulls, so cancellation takes effect at tuple granularity and is
// transparent to operator semantics. On Err the most specific operator
// error found in the DAG is returned.
func Run(ctx context.Context, root *plan.PlanNode, g *graphmodel.QueryGraph) error {
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, errors.CategoryExecution, "EXECUTION_CANCELED", "Executor.Run")
		}

		switch ExecuteNode(root, g) {
		case operator.OK:
			continue
		case operator.Depleted:
			return nil
		default:
			if cause := findOperatorError(root); cause != nil {
				return errors.Wrap(cause, errors.CategoryExecution, "STREAM_FAILED", "Executor.Run")
			}
			return errors.Execution("STREAM_FAILED",
				"execution aborted by operator failure").At("Executor.Run")
		}
	}
}

// findOperatorError walks the DAG for the first operator reporting a real
// error behind its Err result.
func findOperatorError(node *plan.PlanNode) error {
	if node == nil {
		return nil
	}
	if reporter, ok := node.Op.(operator.ErrReporter); ok {
		if err := reporter.LastError(); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := findOperatorError(child); err != nil {
			return err
		}
	}
	return nil
}
