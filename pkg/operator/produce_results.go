package operator

import (
	"fmt"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// ProduceResults is the root operator of every plan. Each consume projects
// the return-clause expressions over the current bindings into the result
// set; the result set fills up as a side effect of driving the plan.
type ProduceResults struct {
	elements []*ast.ReturnElement
	results  *ResultSet

	// rows is set when an Aggregate sits below this operator; grouped
	// rows are taken from it instead of being projected from bindings.
	rows RowProducer

	fresh   bool
	lastErr error
}

// NewProduceResults creates the projection operator for a return clause.
// A nil return clause produces rows with no columns, which still counts
// matches.
func NewProduceResults(ret *ast.ReturnClause) (*ProduceResults, error) {
	var elements []*ast.ReturnElement
	if ret != nil {
		elements = ret.Elements
	}
	return &ProduceResults{
		elements: elements,
		results:  NewResultSet(ColumnNames(ret)),
	}, nil
}

func (p *ProduceResults) Type() Type         { return TypeProduceResults }
func (p *ProduceResults) Name() string       { return "Produce Results" }
func (p *ProduceResults) Modifies() []string { return nil }

// SetRowProducer routes projection through an aggregate's materialized
// rows. Wired by the engine when the plan contains an Aggregate operator.
func (p *ProduceResults) SetRowProducer(rp RowProducer) {
	p.rows = rp
}

// Results returns the accumulated result set.
func (p *ProduceResults) Results() *ResultSet {
	return p.results
}

func (p *ProduceResults) Consume(g *graphmodel.QueryGraph) Result {
	if !p.fresh {
		return Refresh
	}
	p.fresh = false

	if p.rows != nil {
		p.results.Add(p.rows.CurrentRow())
		return OK
	}

	row := make(Row, len(p.elements))
	for i, el := range p.elements {
		v, err := projectValue(el, g)
		if err != nil {
			p.lastErr = fmt.Errorf("projecting column %d: %w", i, err)
			return Err
		}
		row[i] = v
	}
	p.results.Add(row)
	return OK
}

func (p *ProduceResults) Reset() Result {
	p.fresh = true
	return OK
}

func (p *ProduceResults) Free() {
	p.rows = nil
}

// LastError returns the projection error behind the last Err result.
func (p *ProduceResults) LastError() error {
	return p.lastErr
}
