package builtin

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/logstore"
	"github.com/loglens/loglens/internal/tool"
)

// writeStore writes a header-prefixed CSV of (Id, Message) rows and opens a
// store over it.
func writeStore(t *testing.T, payloads []string) *logstore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create csv: %v", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"Id", "Message"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, p := range payloads {
		if err := w.Write([]string{string(rune('a' + i)), p}); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	s, err := logstore.Open(path, "")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

// makeWS builds an in-memory working set from payload strings.
func makeWS(payloads []string) *logstore.WorkingSet {
	rows := make([]logstore.Row, len(payloads))
	for i, p := range payloads {
		rows[i] = logstore.Row{Ordinal: i + 1, Values: map[string]string{"Message": p}}
	}
	return logstore.NewWorkingSet([]string{"Id", "Message"}, "Message", rows)
}

// testCatalog configures the cable-access entity kinds used across tests.
func testCatalog() *entity.Catalog {
	return entity.NewCatalog(entity.Config{
		Aliases: map[string]entity.AliasEntry{
			"cable modem": {Terms: []string{"cm", "modem"}, Fields: []string{"CmMacAddress", "CmMac"}},
			"cpe":         {Terms: []string{"customer device"}, Fields: []string{"CpeMac"}},
			"mac domain":  {Terms: []string{"md"}, Fields: []string{"MdId"}},
		},
		Relationships: map[string][]string{
			"cpe":         {"cable modem"},
			"cable modem": {"cpe", "mac domain"},
		},
	})
}

// runOK executes a tool and requires a successful result.
func runOK(t *testing.T, tl tool.Tool, args tool.Args) tool.Result {
	t.Helper()
	res, err := tl.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected success, got failure: %s", res.Message)
	}
	return res
}

// runFail executes a tool and requires an expected failure (not a Go error).
func runFail(t *testing.T, tl tool.Tool, args tool.Args) tool.Result {
	t.Helper()
	res, err := tl.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OK {
		t.Fatalf("expected failure, got success: %s", res.Message)
	}
	return res
}
