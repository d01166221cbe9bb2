package summary

import (
	"fmt"
	"strings"
	"testing"

	"github.com/loglens/loglens/internal/entity"
	"github.com/loglens/loglens/internal/logstore"
)

func makeWS(payloads []string) *logstore.WorkingSet {
	rows := make([]logstore.Row, len(payloads))
	for i, p := range payloads {
		rows[i] = logstore.Row{Ordinal: i + 1, Values: map[string]string{"Message": p}}
	}
	return logstore.NewWorkingSet([]string{"Id", "Message"}, "Message", rows)
}

func testCatalog() *entity.Catalog {
	return entity.NewCatalog(entity.Config{
		Aliases: map[string]entity.AliasEntry{
			"cable modem": {Terms: []string{"cm"}, Fields: []string{"CmMacAddress"}},
			"mac domain":  {Terms: []string{"md"}, Fields: []string{"MdId"}},
		},
	})
}

func TestComputeStats(t *testing.T) {
	ws := makeWS([]string{
		`2024-03-01T10:00:00 ERROR boom`,
		`2024-03-01T10:05:00 INFO fine`,
		`2024-03-01T09:55:00 INFO earlier`,
		`no timestamp WARN here`,
	})

	stats := ComputeStats(ws)
	if stats.Total != 4 {
		t.Errorf("total = %d", stats.Total)
	}
	if stats.BySeverity["INFO"] != 2 || stats.BySeverity["ERROR"] != 1 || stats.BySeverity["WARN"] != 1 {
		t.Errorf("unexpected severity counts: %v", stats.BySeverity)
	}
	if stats.First == nil || stats.First.Hour() != 9 {
		t.Errorf("first timestamp wrong: %v", stats.First)
	}
	if stats.Last == nil || stats.Last.Minute() != 5 {
		t.Errorf("last timestamp wrong: %v", stats.Last)
	}
}

func TestExtractEntities(t *testing.T) {
	ws := makeWS([]string{
		`{"CmMacAddress":"m2","MdId":"0x1"}`,
		`{"CmMacAddress":"m1"}`,
		`{"CmMacAddress":"m1"}`,
	})

	entities := ExtractEntities(ws, testCatalog())
	cms := entities["cable modem"]
	if len(cms) != 2 || cms[0] != "m1" || cms[1] != "m2" {
		t.Errorf("expected sorted distinct modems, got %v", cms)
	}
	if len(entities["mac domain"]) != 1 {
		t.Errorf("unexpected mac domains: %v", entities["mac domain"])
	}
}

func TestSummarize_Deterministic(t *testing.T) {
	payloads := make([]string, 0, 120)
	for i := 0; i < 120; i++ {
		sev := "INFO"
		if i%17 == 0 {
			sev = "ERROR"
		}
		payloads = append(payloads, fmt.Sprintf(
			`2024-03-01T10:%02d:%02d %s event %d {"CmMacAddress":"m%d"}`,
			i/60, i%60, sev, i, i%7))
	}
	ws := makeWS(payloads)

	a := Summarize(ws, "what failed?", testCatalog(), DefaultOptions())
	b := Summarize(ws, "what failed?", testCatalog(), DefaultOptions())
	if a.Text != b.Text {
		t.Error("same input produced different digests")
	}
	if len(a.Samples) != DefaultOptions().SampleBudget {
		t.Errorf("expected %d samples, got %d", DefaultOptions().SampleBudget, len(a.Samples))
	}
	if len(a.Text) > maxTextBytes {
		t.Errorf("digest exceeds the size cap: %d bytes", len(a.Text))
	}
}

func TestSummarize_PrefersSevereRows(t *testing.T) {
	payloads := make([]string, 0, 60)
	for i := 0; i < 59; i++ {
		payloads = append(payloads, fmt.Sprintf(`2024-03-01T10:00:%02d INFO routine %d`, i, i))
	}
	payloads = append(payloads, `2024-03-01T10:01:00 ERROR modem offline {"CmMacAddress":"m1","MdId":"0x1"}`)
	ws := makeWS(payloads)

	s := Summarize(ws, "", testCatalog(), Options{SampleBudget: 5, ImportanceWeight: 0.8})
	found := false
	for _, sample := range s.Samples {
		if strings.Contains(sample, "modem offline") {
			found = true
		}
	}
	if !found {
		t.Errorf("the single ERROR row should be sampled; got:\n%s", strings.Join(s.Samples, "\n"))
	}
}

func TestSummarize_TopFunctionsAndMessages(t *testing.T) {
	ws := makeWS([]string{
		`2024-03-01T10:00:00 ERROR ranging failure 17 {"Function":"cmRanging","CmMacAddress":"m1"}`,
		`2024-03-01T10:00:01 ERROR ranging failure 42 {"Function":"cmRanging","CmMacAddress":"m2"}`,
		`2024-03-01T10:00:02 INFO registration done {"Function":"cmRegister","CmMacAddress":"m3"}`,
	})

	s := Summarize(ws, "", testCatalog(), DefaultOptions())

	if len(s.TopFunctions) != 2 || s.TopFunctions[0].Value != "cmRanging" || s.TopFunctions[0].Count != 2 {
		t.Errorf("unexpected function ranking: %v", s.TopFunctions)
	}
	// The two failures differ only in a number, so they share one template.
	if len(s.TopMessages) == 0 || s.TopMessages[0].Count != 2 {
		t.Errorf("repeated messages should collapse to one template: %v", s.TopMessages)
	}
	if !strings.Contains(s.Text, "Top functions: cmRanging=2 cmRegister=1") {
		t.Errorf("digest missing the function ranking:\n%s", s.Text)
	}
	if !strings.Contains(s.Text, "2x") || !strings.Contains(s.Text, "ranging failure #") {
		t.Errorf("digest missing the message templates:\n%s", s.Text)
	}
	// Samples are numbered.
	if !strings.Contains(s.Text, "  1. ") || !strings.Contains(s.Text, "  3. ") {
		t.Errorf("samples should be a numbered list:\n%s", s.Text)
	}
}

func TestSummarize_SmallSetKeepsAllRows(t *testing.T) {
	ws := makeWS([]string{
		`2024-03-01T10:00:00 INFO a`,
		`2024-03-01T10:00:01 INFO b`,
	})
	s := Summarize(ws, "", nil, DefaultOptions())
	if len(s.Samples) != 2 {
		t.Errorf("expected every row sampled, got %d", len(s.Samples))
	}
}
