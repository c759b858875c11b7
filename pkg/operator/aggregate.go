package operator

import (
	"fmt"
	"strings"

	"github.com/corvusgraph/qengine/pkg/ast"
	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// AggFunc represents the aggregation function of a return element.
type AggFunc int

const (
	Count AggFunc = iota
	Sum
	Avg
	Min
	Max
)

// String returns a string representation of the aggregation function.
func (f AggFunc) String() string {
	switch f {
	case Count:
		return "COUNT"
	case Sum:
		return "SUM"
	case Avg:
		return "AVG"
	case Min:
		return "MIN"
	case Max:
		return "MAX"
	default:
		return "UNKNOWN"
	}
}

// ParseAggFunc resolves an aggregation function name from the return
// clause, case-insensitively.
func ParseAggFunc(name string) (AggFunc, error) {
	switch strings.ToUpper(name) {
	case "COUNT":
		return Count, nil
	case "SUM":
		return Sum, nil
	case "AVG":
		return Avg, nil
	case "MIN":
		return Min, nil
	case "MAX":
		return Max, nil
	default:
		return 0, fmt.Errorf("unknown aggregation function %q", name)
	}
}

// Source pulls one tuple from the aggregate's input stream. The engine
// wires it to the executor's drive of the aggregate's child plan node
// before execution starts.
type Source func() Result

// aggState accumulates one aggregation column for one group.
type aggState struct {
	fn      AggFunc
	count   int64
	sum     float64
	intSum  int64
	allInts bool
	min     graphmodel.Value
	max     graphmodel.Value
	seen    bool
}

func newAggState(fn AggFunc) *aggState {
	return &aggState{fn: fn, allInts: true}
}

func (s *aggState) add(v graphmodel.Value) error {
	if v.IsNull() {
		return nil
	}
	s.count++

	switch s.fn {
	case Count:
		return nil
	case Sum, Avg:
		switch v.Kind {
		case graphmodel.KindInt:
			s.sum += float64(v.I)
			s.intSum += v.I
		case graphmodel.KindFloat:
			s.sum += v.F
			s.allInts = false
		default:
			return fmt.Errorf("%s over non-numeric value %s", s.fn, v)
		}
		return nil
	case Min, Max:
		if !s.seen {
			s.min, s.max = v, v
			s.seen = true
			return nil
		}
		if c, err := v.Compare(s.min); err != nil {
			return err
		} else if c < 0 {
			s.min = v
		}
		if c, err := v.Compare(s.max); err != nil {
			return err
		} else if c > 0 {
			s.max = v
		}
		return nil
	default:
		return fmt.Errorf("unknown aggregation function %d", s.fn)
	}
}

func (s *aggState) finalize() graphmodel.Value {
	switch s.fn {
	case Count:
		return graphmodel.IntValue(s.count)
	case Sum:
		if s.allInts {
			return graphmodel.IntValue(s.intSum)
		}
		return graphmodel.FloatValue(s.sum)
	case Avg:
		if s.count == 0 {
			return graphmodel.NullValue()
		}
		return graphmodel.FloatValue(s.sum / float64(s.count))
	case Min:
		if !s.seen {
			return graphmodel.NullValue()
		}
		return s.min
	case Max:
		if !s.seen {
			return graphmodel.NullValue()
		}
		return s.max
	default:
		return graphmodel.NullValue()
	}
}

// group is one grouping-key bucket: the key column values plus one
// aggregation state per aggregated column.
type group struct {
	keyVals map[int]graphmodel.Value
	aggs    map[int]*aggState
}

// Aggregate drains its input stream to depletion, groups tuples by the
// non-aggregated return elements, and then emits one materialized row per
// group. Grouped rows are handed to ProduceResults through the RowProducer
// interface since they carry computed values, not entity bindings.
type Aggregate struct {
	elements []*ast.ReturnElement
	funcs    map[int]AggFunc

	source   Source
	computed bool

	groups  []*group // insertion order, keeps emission deterministic
	byKey   map[string]*group
	emitPos int
	current Row
	lastErr error
}

// NewAggregate creates the aggregation operator for a return clause that
// contains at least one aggregation call.
func NewAggregate(ret *ast.ReturnClause) (*Aggregate, error) {
	if ret == nil || !ret.ContainsAggregation() {
		return nil, fmt.Errorf("return clause carries no aggregation")
	}

	funcs := make(map[int]AggFunc)
	for i, el := range ret.Elements {
		if el.Kind != ast.ReturnAggFunc {
			continue
		}
		fn, err := ParseAggFunc(el.Func)
		if err != nil {
			return nil, err
		}
		funcs[i] = fn
	}

	return &Aggregate{
		elements: ret.Elements,
		funcs:    funcs,
		byKey:    make(map[string]*group),
	}, nil
}

func (a *Aggregate) Type() Type         { return TypeAggregate }
func (a *Aggregate) Name() string       { return "Aggregate" }
func (a *Aggregate) Modifies() []string { return nil }

// SetSource wires the input stream. Must be called before execution; the
// engine points it at the executor's drive of this operator's child.
func (a *Aggregate) SetSource(src Source) {
	a.source = src
}

// CurrentRow returns the group row emitted by the last OK consume.
func (a *Aggregate) CurrentRow() Row {
	return a.current
}

// LastError returns the error behind the last Err result.
func (a *Aggregate) LastError() error {
	return a.lastErr
}

func (a *Aggregate) Consume(g *graphmodel.QueryGraph) Result {
	if !a.computed {
		if a.source == nil {
			a.lastErr = fmt.Errorf("aggregate has no input source wired")
			return Err
		}
		for {
			res := a.source()
			if res == Depleted {
				break
			}
			if res != OK {
				if a.lastErr == nil {
					a.lastErr = fmt.Errorf("aggregate input stream failed: %s", res)
				}
				return Err
			}
			if err := a.accumulate(g); err != nil {
				a.lastErr = err
				return Err
			}
		}
		a.computed = true
	}

	if a.emitPos >= len(a.groups) {
		return Depleted
	}

	grp := a.groups[a.emitPos]
	a.emitPos++

	row := make(Row, len(a.elements))
	for i := range a.elements {
		if st, ok := grp.aggs[i]; ok {
			row[i] = st.finalize()
		} else {
			row[i] = grp.keyVals[i]
		}
	}
	a.current = row
	return OK
}

// accumulate folds the current bindings into the matching group, creating
// it on first sight.
func (a *Aggregate) accumulate(g *graphmodel.QueryGraph) error {
	var keyParts []string
	keyVals := make(map[int]graphmodel.Value)

	for i, el := range a.elements {
		if _, isAgg := a.funcs[i]; isAgg {
			continue
		}
		v, err := projectValue(el, g)
		if err != nil {
			return err
		}
		keyVals[i] = v
		keyParts = append(keyParts, v.String())
	}
	key := strings.Join(keyParts, "\x1f")

	grp, ok := a.byKey[key]
	if !ok {
		grp = &group{keyVals: keyVals, aggs: make(map[int]*aggState)}
		for i, fn := range a.funcs {
			grp.aggs[i] = newAggState(fn)
		}
		a.byKey[key] = grp
		a.groups = append(a.groups, grp)
	}

	for i, st := range grp.aggs {
		el := a.elements[i]
		if el.Property == "" {
			// Aggregating a whole entity, e.g. COUNT(x).
			node := g.GetNodeByAlias(el.Alias)
			if node == nil || node.Bound == nil {
				return fmt.Errorf("aggregation alias %q is not bound", el.Alias)
			}
			if err := st.add(graphmodel.StringValue(node.Bound.ID)); err != nil {
				return err
			}
			continue
		}
		v, err := projectValue(&ast.ReturnElement{
			Kind:     ast.ReturnProperty,
			Alias:    el.Alias,
			Property: el.Property,
		}, g)
		if err != nil {
			return err
		}
		if err := st.add(v); err != nil {
			return err
		}
	}
	return nil
}

// Reset rewinds group emission; the computed groups are kept so the
// operator re-emits them.
func (a *Aggregate) Reset() Result {
	a.emitPos = 0
	return OK
}

func (a *Aggregate) Free() {
	a.groups = nil
	a.byKey = nil
	a.source = nil
}
