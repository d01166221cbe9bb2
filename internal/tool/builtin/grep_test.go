package builtin

import (
	"strings"
	"testing"

	"github.com/loglens/loglens/internal/tool"
)

func TestGrepLogs_SubstringCaseInsensitive(t *testing.T) {
	store := writeStore(t, []string{
		`2024-03-01T10:00:00 ERROR Ranging failed`,
		`2024-03-01T10:00:01 INFO ranging ok`,
		`2024-03-01T10:00:02 INFO unrelated`,
	})

	res := runOK(t, NewGrepLogsTool(store), tool.Args{"pattern": "ranging"})

	ws, ok := res.Table()
	if !ok {
		t.Fatal("expected tabular output")
	}
	if ws.Len() != 2 {
		t.Errorf("expected 2 case-insensitive matches, got %d", ws.Len())
	}
	if res.Meta.DataType != tool.DataRawLogs {
		t.Errorf("unexpected data type %s", res.Meta.DataType)
	}
	if !strings.Contains(res.Message, "duplicate") {
		t.Errorf("message should warn about duplicate entities: %s", res.Message)
	}
}

func TestGrepLogs_CaseSensitiveAndMaxResults(t *testing.T) {
	store := writeStore(t, []string{
		`ERROR one`,
		`error two`,
		`ERROR three`,
	})

	res := runOK(t, NewGrepLogsTool(store), tool.Args{
		"pattern":        "ERROR",
		"case_sensitive": true,
		"max_results":    1,
	})

	ws, _ := res.Table()
	if ws.Len() != 1 {
		t.Errorf("max_results not honored: %d rows", ws.Len())
	}
}

func TestGrepLogs_Regex(t *testing.T) {
	store := writeStore(t, []string{
		`cm 00:11:22:33:44:55 online`,
		`no mac here`,
	})

	res := runOK(t, NewGrepLogsTool(store), tool.Args{
		"pattern": `(?:[0-9a-f]{2}:){5}[0-9a-f]{2}`,
		"regex":   true,
	})

	ws, _ := res.Table()
	if ws.Len() != 1 {
		t.Errorf("expected 1 regex match, got %d", ws.Len())
	}
}

func TestGrepLogs_NoMatchesIsStillOK(t *testing.T) {
	store := writeStore(t, []string{`INFO nothing relevant`})

	res := runOK(t, NewGrepLogsTool(store), tool.Args{"pattern": "absent-token"})

	ws, _ := res.Table()
	if ws.Len() != 0 {
		t.Errorf("expected an empty working set, got %d rows", ws.Len())
	}
}

func TestGrepLogs_EmptyPattern(t *testing.T) {
	store := writeStore(t, []string{`INFO x`})
	runFail(t, NewGrepLogsTool(store), tool.Args{})
}

func TestCountMatchingRows(t *testing.T) {
	store := writeStore(t, []string{
		`ERROR ranging failed`,
		`ERROR ranging failed`,
		`INFO ranging ok`,
	})

	res := runOK(t, NewCountMatchingTool(store), tool.Args{"pattern": "failed"})

	cd := res.Data.(*tool.CountData)
	if cd.Unique != 2 {
		t.Errorf("expected 2 matching rows, got %d", cd.Unique)
	}
	if cd.Total != 3 {
		t.Errorf("expected 3 scanned rows, got %d", cd.Total)
	}
	if res.Meta.DataType != tool.DataFinalCount {
		t.Errorf("unexpected data type %s", res.Meta.DataType)
	}
}

func TestParseJSONField_CaseInsensitiveWithDuplicates(t *testing.T) {
	ws := makeWS([]string{
		`ranging {"CmMacAddress":"m1"}`,
		`ranging {"CmMacAddress":"m2"}`,
		`ranging {"CmMacAddress":"m1"}`,
		`no payload`,
	})

	res := runOK(t, NewParseJSONFieldTool(), tool.Args{
		"field_name": "cmmacaddress",
		"logs":       ws,
	})

	vl := res.Data.(*tool.ValueList)
	if len(vl.Values) != 3 {
		t.Errorf("duplicates must be preserved, got %v", vl.Values)
	}
	if res.Meta.Extra["field"] != "CmMacAddress" {
		t.Errorf("expected canonical spelling, got %v", res.Meta.Extra["field"])
	}
	if res.Meta.Extra["raw_count"] != 3 {
		t.Errorf("raw_count missing: %v", res.Meta.Extra)
	}
	if res.Meta.DataType != tool.DataRawValues {
		t.Errorf("unexpected data type %s", res.Meta.DataType)
	}
}

func TestParseJSONField_UnknownFieldListsAvailable(t *testing.T) {
	ws := makeWS([]string{`{"CmMacAddress":"m1","MdId":"0x1"}`})

	res := runFail(t, NewParseJSONFieldTool(), tool.Args{
		"field_name": "NoSuchField",
		"logs":       ws,
	})
	if !strings.Contains(res.Message, "MdId") {
		t.Errorf("failure should list available fields: %s", res.Message)
	}
}

func TestParseJSONField_NoJSONPayloads(t *testing.T) {
	ws := makeWS([]string{`plain text`, `more plain text`})

	res := runFail(t, NewParseJSONFieldTool(), tool.Args{
		"field_name": "CmMacAddress",
		"logs":       ws,
	})
	if !strings.Contains(res.Message, "JSON") {
		t.Errorf("failure should explain the payloads are not JSON: %s", res.Message)
	}
}
