package operator

import (
	"strings"

	"github.com/corvusgraph/qengine/pkg/graphmodel"
)

// Row is one result tuple, values in return-clause column order.
type Row []graphmodel.Value

// ResultSet accumulates the rows a query produces. The ProduceResults
// operator appends to it as a side effect of each successful consume.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// NewResultSet creates an empty result set with the given column names.
func NewResultSet(columns []string) *ResultSet {
	return &ResultSet{Columns: columns}
}

// Add appends one row.
func (rs *ResultSet) Add(row Row) {
	rs.Rows = append(rs.Rows, row)
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	return len(rs.Rows)
}

// String renders the result set as a header line followed by one line per
// row, columns separated by commas.
func (rs *ResultSet) String() string {
	var b strings.Builder
	b.WriteString(strings.Join(rs.Columns, ", "))
	b.WriteString("\n")
	for _, row := range rs.Rows {
		vals := make([]string, len(row))
		for i, v := range row {
			vals[i] = v.String()
		}
		b.WriteString(strings.Join(vals, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

// RowProducer is implemented by operators that materialize whole rows
// themselves (the Aggregate operator). When a ProduceResults operator has
// a row producer below it, it projects the producer's current row instead
// of reading the query-graph bindings.
type RowProducer interface {
	CurrentRow() Row
}
