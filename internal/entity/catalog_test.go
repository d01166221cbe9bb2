package entity

import (
	"os"
	"path/filepath"
	"testing"
)

func testCatalog() *Catalog {
	return NewCatalog(Config{
		Aliases: map[string]AliasEntry{
			"cable modem": {
				Terms:  []string{"cm", "modem", "cable modems"},
				Fields: []string{"CmMacAddress", "CmIpAddress"},
			},
			"cpe": {
				Terms:  []string{"customer device", "cpes"},
				Fields: []string{"CpeMacAddress"},
			},
			"rpd": {
				Terms:  []string{"remote phy"},
				Fields: []string{"RpdName"},
			},
		},
		Patterns: map[string][]string{
			"cable modem": {`([0-9a-f]{2}:){5}[0-9a-f]{2}`},
			"rpd":         {`[invalid`}, // skipped with a warning, not fatal
		},
		Relationships: map[string][]string{
			"cpe":         {"cable modem"},
			"cable modem": {"rpd", "cpe"},
		},
	})
}

func TestKindForField_CaseInsensitive(t *testing.T) {
	c := testCatalog()
	kind, ok := c.KindForField("cmmacaddress")
	if !ok || kind != "cable modem" {
		t.Errorf("got (%q, %v), want (cable modem, true)", kind, ok)
	}
	if _, ok := c.KindForField("Unrelated"); ok {
		t.Error("unknown field should not resolve")
	}
}

func TestKindsInQuery_WholeWord(t *testing.T) {
	c := testCatalog()

	kinds := c.KindsInQuery("how many unique cable modems are there?")
	if len(kinds) != 1 || kinds[0] != "cable modem" {
		t.Errorf("got %v, want [cable modem]", kinds)
	}

	// "cm" must match only as a whole word.
	if kinds := c.KindsInQuery("the cmts rebooted"); len(kinds) != 0 {
		t.Errorf("partial-word alias must not match, got %v", kinds)
	}

	kinds = c.KindsInQuery("find the CPE behind each CM")
	if len(kinds) != 2 || kinds[0] != "cpe" || kinds[1] != "cable modem" {
		t.Errorf("expected [cpe, cable modem] in query order, got %v", kinds)
	}
}

func TestGroupFields_OtherBucketPreservesOrder(t *testing.T) {
	c := testCatalog()
	grouped, other := c.GroupFields([]string{"Zeta", "CmMacAddress", "Alpha", "RpdName"})

	if got := grouped["cable modem"]; len(got) != 1 || got[0] != "CmMacAddress" {
		t.Errorf("cable modem bucket wrong: %v", got)
	}
	if got := grouped["rpd"]; len(got) != 1 || got[0] != "RpdName" {
		t.Errorf("rpd bucket wrong: %v", got)
	}
	if len(other) != 2 || other[0] != "Zeta" || other[1] != "Alpha" {
		t.Errorf("other bucket must preserve relative order, got %v", other)
	}
}

func TestNeighbors(t *testing.T) {
	c := testCatalog()
	ns := c.Neighbors("cable modem")
	if len(ns) != 2 || ns[0] != "rpd" {
		t.Errorf("unexpected neighbors: %v", ns)
	}
	if ns := c.Neighbors("unknown"); ns != nil {
		t.Errorf("unknown kind should have no neighbors, got %v", ns)
	}
}

func TestInvalidPatternSkipped(t *testing.T) {
	c := testCatalog()
	if pats := c.PatternsForKind("rpd"); len(pats) != 0 {
		t.Errorf("invalid pattern should be skipped, got %d patterns", len(pats))
	}
	if pats := c.PatternsForKind("cable modem"); len(pats) != 1 {
		t.Errorf("valid pattern should compile, got %d", len(pats))
	}
}

func TestLoad_MissingSectionsTolerated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entities.yaml")
	content := "aliases:\n  rpd:\n    terms: [\"remote phy\"]\n    fields: [\"RpdName\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind, ok := c.KindForField("RpdName"); !ok || kind != "rpd" {
		t.Errorf("aliases section not loaded: (%q, %v)", kind, ok)
	}
	// patterns/relationships absent: features degrade, no failure.
	if c.Neighbors("rpd") != nil {
		t.Error("expected no neighbors without relationships section")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
