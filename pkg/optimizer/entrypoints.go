// Package optimizer rewrites the initial operator DAG: entry-point
// selection attaches scan leaves, expand merge converges fan-in chains,
// and filter pushdown places where-clause predicates as close to their
// data sources as possible.
package optimizer

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/graphmodel"
	"github.com/corvusgraph/qengine/pkg/logging"
	"github.com/corvusgraph/qengine/pkg/operator"
	"github.com/corvusgraph/qengine/pkg/plan"
)

// Config controls optional optimizer behavior.
type Config struct {
	// CardinalityHints logs label cardinalities of both expand endpoints
	// during entry-point selection. The entry point itself stays the
	// expand's source node regardless: scanning the lower-cardinality
	// destination would require expanding in reverse, an operator this
	// engine does not have.
	CardinalityHints bool
}

// SelectEntryPoints walks the DAG from the root and attaches a scan child
// to every leaf ExpandAll node: a label scan when the expand's source
// pattern node is labeled, a full node scan otherwise.
func SelectEntryPoints(storage graphmodel.Storage, root *plan.PlanNode, cfg Config) error {
	if storage == nil {
		return fmt.Errorf("storage cannot be nil")
	}
	if root == nil {
		return nil
	}

	if len(root.Children) == 0 && root.Op.Type() == operator.TypeExpandAll {
		expand := root.Op.(*operator.ExpandAll)
		entry := expand.Src()

		if cfg.CardinalityHints && entry.Label != "" && expand.Dest().Label != "" {
			optimizerLogger := logging.WithComponent("optimizer")
			optimizerLogger.Debug().
				Str("pass", "entry-points").
				Str("src", entry.Alias).
				Int("src_cardinality", storage.LabelCardinality(entry.Label)).
				Str("dest", expand.Dest().Alias).
				Int("dest_cardinality", storage.LabelCardinality(expand.Dest().Label)).
				Msg("entry point cardinalities")
		}

		var scan operator.Operator
		var err error
		if entry.Label != "" {
			scan, err = operator.NewNodeByLabelScan(storage, entry, entry.Label)
		} else {
			// Node is not labeled, no other option but a full scan.
			scan, err = operator.NewAllNodeScan(storage, entry)
		}
		if err != nil {
			return err
		}

		root.AddChild(plan.NewPlanNode(scan))
		return nil
	}

	for _, child := range root.Children {
		if err := SelectEntryPoints(storage, child, cfg); err != nil {
			return err
		}
	}
	return nil
}
