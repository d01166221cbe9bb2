package logstore

import (
	"testing"
	"time"
)

func TestParseEvent_FullPayload(t *testing.T) {
	ev := ParseEvent(`2024-03-01T10:15:30Z INFO cm-registration {"CmMacAddress":"2c:ab:a4:47:1a:d0","RpdName":"rpd-17"}`)

	if ev.Timestamp == nil {
		t.Fatal("expected timestamp")
	}
	want := time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC)
	if !ev.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", ev.Timestamp, want)
	}
	if ev.Severity != "INFO" {
		t.Errorf("severity = %q, want INFO", ev.Severity)
	}
	if ev.Fields["CmMacAddress"] != "2c:ab:a4:47:1a:d0" {
		t.Errorf("missing CmMacAddress field: %v", ev.Fields)
	}
	if ev.Fields["RpdName"] != "rpd-17" {
		t.Errorf("missing RpdName field: %v", ev.Fields)
	}
}

func TestParseEvent_SpaceSeparatedTimestamp(t *testing.T) {
	ev := ParseEvent(`2024-03-01 10:15:30 WARN slow response`)
	if ev.Timestamp == nil {
		t.Fatal("expected two-token timestamp to parse")
	}
	if ev.Severity != "WARN" {
		t.Errorf("severity = %q, want WARN", ev.Severity)
	}
}

func TestParseEvent_MalformedYieldsNullFields(t *testing.T) {
	ev := ParseEvent("complete garbage with no structure")
	if ev.Timestamp != nil {
		t.Errorf("expected nil timestamp, got %v", ev.Timestamp)
	}
	if ev.Severity != "" {
		t.Errorf("expected empty severity, got %q", ev.Severity)
	}
	if ev.Fields != nil {
		t.Errorf("expected nil fields, got %v", ev.Fields)
	}
	if ev.Message == "" {
		t.Error("message should carry the raw text")
	}
}

func TestParseEvent_WarningNormalized(t *testing.T) {
	ev := ParseEvent("2024-03-01T10:00:00Z WARNING something")
	if ev.Severity != "WARN" {
		t.Errorf("severity = %q, want WARN", ev.Severity)
	}
}

// Property P10: payloads with one layer of escaped quotes decode to the
// same field values as their unescaped form.
func TestParseEvent_DoubledQuoteTolerance(t *testing.T) {
	clean := `2024-03-01T10:00:00Z INFO x {"CpeMacAddress":"2c:ab:a4:47:1a:d2","MdId":"0x7a030000"}`
	doubled := `2024-03-01T10:00:00Z INFO x {""CpeMacAddress"":""2c:ab:a4:47:1a:d2"",""MdId"":""0x7a030000""}`

	a := ParseEvent(clean)
	b := ParseEvent(doubled)

	if len(a.Fields) == 0 || len(b.Fields) == 0 {
		t.Fatalf("both forms must decode: clean=%v doubled=%v", a.Fields, b.Fields)
	}
	for k, v := range a.Fields {
		if b.Fields[k] != v {
			t.Errorf("field %s: doubled form gave %q, want %q", k, b.Fields[k], v)
		}
	}
}

func TestParseEvent_NestedObjectFlattened(t *testing.T) {
	ev := ParseEvent(`2024-03-01T10:00:00Z INFO x {"outer":{"CmMacAddress":"aa:bb:cc:dd:ee:ff"},"n":42}`)
	if ev.Fields["CmMacAddress"] != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("nested field not flattened: %v", ev.Fields)
	}
	if ev.Fields["n"] != "42" {
		t.Errorf("integral number should render without decimals, got %q", ev.Fields["n"])
	}
}

func TestParseEvent_TrailingTextAfterJSON(t *testing.T) {
	ev := ParseEvent(`2024-03-01T10:00:00Z INFO x {"a":"1"} trailing junk`)
	if ev.Fields["a"] != "1" {
		t.Errorf("balanced object should parse despite trailing text: %v", ev.Fields)
	}
}

func TestFieldValue_CaseInsensitive(t *testing.T) {
	payload := `2024-03-01T10:00:00Z INFO x {"CmMacAddress":"aa:bb"}`
	key, val, ok := FieldValue(payload, "cmmacaddress")
	if !ok {
		t.Fatal("expected field to resolve case-insensitively")
	}
	if key != "CmMacAddress" || val != "aa:bb" {
		t.Errorf("got key=%q val=%q", key, val)
	}
}

func TestSeverityRank_Ordering(t *testing.T) {
	if !(SeverityRank["DEBUG"] < SeverityRank["INFO"] &&
		SeverityRank["INFO"] < SeverityRank["WARN"] &&
		SeverityRank["WARN"] < SeverityRank["ERROR"]) {
		t.Error("severity hierarchy must be DEBUG < INFO < WARN < ERROR")
	}
}
