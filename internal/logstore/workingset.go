package logstore

// Row is a single log record: the 1-based position in the file plus the
// column values keyed by header name. Rows are read-only after creation.
type Row struct {
	Ordinal int
	Values  map[string]string
}

// WorkingSet is an immutable ordered sequence of rows produced by a tool.
// At most one working set is active per query; tools borrow it read-only.
type WorkingSet struct {
	header     []string
	payloadCol string
	rows       []Row
}

// NewWorkingSet builds a working set over the given rows. The caller must
// not mutate rows after the call.
func NewWorkingSet(header []string, payloadCol string, rows []Row) *WorkingSet {
	return &WorkingSet{header: header, payloadCol: payloadCol, rows: rows}
}

// Derive creates a new working set sharing this set's header and payload
// column but holding a different row sequence. Used by pure transformations
// (sort, time filter) that never mutate their input.
func (ws *WorkingSet) Derive(rows []Row) *WorkingSet {
	return &WorkingSet{header: ws.header, payloadCol: ws.payloadCol, rows: rows}
}

// Len returns the number of rows.
func (ws *WorkingSet) Len() int {
	if ws == nil {
		return 0
	}
	return len(ws.rows)
}

// Rows returns the underlying row slice. Callers must treat it as read-only.
func (ws *WorkingSet) Rows() []Row { return ws.rows }

// Header returns the ordered column names.
func (ws *WorkingSet) Header() []string { return ws.header }

// PayloadColumn returns the name of the column holding the event payload.
func (ws *WorkingSet) PayloadColumn() string { return ws.payloadCol }

// Payload returns the payload text of a row.
func (ws *WorkingSet) Payload(r Row) string { return r.Values[ws.payloadCol] }
