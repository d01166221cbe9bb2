package tool

import (
	"fmt"

	"github.com/loglens/loglens/internal/logstore"
)

// DataType classifies a result for the context builder's hint selection.
type DataType string

const (
	DataRawLogs      DataType = "raw_logs"
	DataRawValues    DataType = "raw_values"
	DataUniqueValues DataType = "unique_values"
	DataFinalCount   DataType = "final_count"
	DataAggregated   DataType = "aggregated"
	DataMetadata     DataType = "metadata"
	DataAnalysis     DataType = "analysis"
	DataFormatted    DataType = "formatted"
	DataTerminal     DataType = "terminal"
)

// Data is the tagged union of tool output payloads.
type Data interface{ isToolData() }

// TableData carries a working set (tabular output).
type TableData struct {
	Set *logstore.WorkingSet
}

// ValueList carries raw or deduplicated string values.
type ValueList struct {
	Values []string
}

// CountData carries a final count result.
type CountData struct {
	Unique int
	Total  int
}

// Group is one entry of an ordered aggregation.
type Group struct {
	Key   string
	Count int
}

// GroupCounts carries an ordered aggregation (sorted by the producing tool).
type GroupCounts struct {
	Groups []Group
}

// Hop is one step of a relationship chain.
type Hop struct {
	Field string
	Value string
}

// ChainData carries a relationship-walker result.
type ChainData struct {
	Path    []Hop
	Targets []string
	Depth   int
	Found   bool
}

// TextData carries free-form text output.
type TextData struct {
	Text string
}

func (*TableData) isToolData()   {}
func (*ValueList) isToolData()   {}
func (*CountData) isToolData()   {}
func (*GroupCounts) isToolData() {}
func (*ChainData) isToolData()   {}
func (*TextData) isToolData()    {}

// Meta is the result metadata. Extra carries tool-specific values the
// orchestrator uses for state bookkeeping (e.g. the parsed field name).
type Meta struct {
	DataType DataType
	Extra    map[string]any
}

// Result is the uniform envelope returned by every tool.
type Result struct {
	OK      bool
	Message string
	Data    Data
	Meta    Meta
}

// Ok builds a successful result.
func Ok(dt DataType, data Data, format string, args ...any) Result {
	return Result{
		OK:      true,
		Message: fmt.Sprintf(format, args...),
		Data:    data,
		Meta:    Meta{DataType: dt},
	}
}

// Fail builds a failed result with a descriptive, planner-visible message.
func Fail(format string, args ...any) Result {
	return Result{
		OK:      false,
		Message: fmt.Sprintf(format, args...),
		Meta:    Meta{DataType: DataMetadata},
	}
}

// WithExtra attaches a bookkeeping key to the result's metadata.
func (r Result) WithExtra(key string, value any) Result {
	if r.Meta.Extra == nil {
		r.Meta.Extra = make(map[string]any)
	}
	r.Meta.Extra[key] = value
	return r
}

// Table returns the working set when the result is tabular.
func (r Result) Table() (*logstore.WorkingSet, bool) {
	td, ok := r.Data.(*TableData)
	if !ok || td.Set == nil {
		return nil, false
	}
	return td.Set, true
}
