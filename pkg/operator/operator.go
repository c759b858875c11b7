// Package operator implements the physical operators of the query engine.
//
// An operator is an abstract producer of binding tuples. It does not hold
// references to other operators; the surrounding plan node owns the DAG
// edges and the executor coordinates data flow between operators through
// the pull protocol. Operators communicate through the shared binding
// slots of the query graph: a scan writes the node it matched into its
// target pattern node, and every operator above it reads that slot.
package operator

import "github.com/corvusgraph/qengine/pkg/graphmodel"

// Result is the outcome of a Consume or Reset call.
type Result int

const (
	// OK means a tuple was produced; the caller may consume more.
	OK Result = iota

	// Refresh means the operator exhausted its current upstream bindings
	// and needs new data pulled from its streams before it can produce
	// again. Internal control flow, never surfaced to the user.
	Refresh

	// Depleted means the stream is exhausted. Normal termination.
	Depleted

	// Err means the operator failed. Execution aborts.
	Err
)

func (r Result) String() string {
	switch r {
	case OK:
		return "OK"
	case Refresh:
		return "REFRESH"
	case Depleted:
		return "DEPLETED"
	case Err:
		return "ERR"
	default:
		return "UNKNOWN"
	}
}

// Type tags the concrete operator variants.
type Type int

const (
	TypeAllNodeScan Type = iota
	TypeLabelScan
	TypeExpandAll
	TypeExpandInto
	TypeFilter
	TypeAggregate
	TypeProduceResults
)

func (t Type) String() string {
	switch t {
	case TypeAllNodeScan:
		return "ALL_NODE_SCAN"
	case TypeLabelScan:
		return "LABEL_SCAN"
	case TypeExpandAll:
		return "EXPAND_ALL"
	case TypeExpandInto:
		return "EXPAND_INTO"
	case TypeFilter:
		return "FILTER"
	case TypeAggregate:
		return "AGGREGATE"
	case TypeProduceResults:
		return "PRODUCE_RESULTS"
	default:
		return "UNKNOWN"
	}
}

// Operator is the capability set every physical operator exposes.
type Operator interface {
	// Type returns the operator's variant tag.
	Type() Type

	// Name returns the operator's display name, used by plan printing.
	Name() string

	// Modifies returns the ordered binding names this operator assigns.
	Modifies() []string

	// Consume pulls one tuple, binding it into the query graph, or
	// signals stream state.
	Consume(g *graphmodel.QueryGraph) Result

	// Reset re-arms the operator for another pass over its input.
	// Reset is idempotent.
	Reset() Result

	// Free releases the operator's private state. Called exactly once,
	// by the plan node that owns the operator.
	Free()
}

// ErrReporter is implemented by operators that can fail with a real error
// (beyond the Result code). The executor surfaces the reported error to
// the caller when execution aborts.
type ErrReporter interface {
	LastError() error
}
