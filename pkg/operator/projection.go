package operator

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// ColumnName derives the output column name of a return element: the AS
// alias when present, otherwise a name built from the element itself.
func ColumnName(el *ast.ReturnElement) string {
	if el.As != "" {
		return el.As
	}
	switch el.Kind {
	case ast.ReturnProperty:
		return el.Alias + "." + el.Property
	case ast.ReturnAggFunc:
		if el.Property != "" {
			return fmt.Sprintf("%s(%s.%s)", el.Func, el.Alias, el.Property)
		}
		return fmt.Sprintf("%s(%s)", el.Func, el.Alias)
	default:
		return el.Alias
	}
}

// ColumnNames derives the column names of a whole return clause.
func ColumnNames(ret *ast.ReturnClause) []string {
	if ret == nil {
		return nil
	}
	names := make([]string, len(ret.Elements))
	for i, el := range ret.Elements {
		names[i] = ColumnName(el)
	}
	return names
}

// projectValue evaluates a non-aggregate return element against the
// current query-graph bindings. Whole entities project as their id.
func projectValue(el *ast.ReturnElement, g *graphmodel.QueryGraph) (graphmodel.Value, error) {
	node := g.GetNodeByAlias(el.Alias)
	if node == nil {
		return graphmodel.NullValue(), fmt.Errorf("return alias %q is not part of the pattern", el.Alias)
	}
	if node.Bound == nil {
		return graphmodel.NullValue(), fmt.Errorf("return alias %q is not bound", el.Alias)
	}

	switch el.Kind {
	case ast.ReturnNode:
		return graphmodel.StringValue(node.Bound.ID), nil
	case ast.ReturnProperty:
		return node.Bound.Property(el.Property), nil
	default:
		return graphmodel.NullValue(), fmt.Errorf("aggregation %q projected outside an aggregate", el.Func)
	}
}
