// Package entity maps payload field names and free-text user phrasings to
// configured entity kinds (cable modem, RPD, CPE, ...). The catalog is
// loaded once per process and immutable afterwards.
package entity

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the YAML configuration document. Every section is
// optional; a missing section degrades the corresponding feature but never
// aborts loading.
type Config struct {
	Aliases       map[string]AliasEntry `yaml:"aliases"`
	Patterns      map[string][]string   `yaml:"patterns"`
	Relationships map[string][]string   `yaml:"relationships"`
}

// AliasEntry configures one entity kind: the user phrasings that refer to
// it and the canonical payload field names that carry its values.
type AliasEntry struct {
	Terms  []string `yaml:"terms"`
	Fields []string `yaml:"fields"`
}

// Catalog is the immutable runtime view of the configuration.
type Catalog struct {
	kinds       []string
	fieldToKind map[string]string // lower(field) -> kind
	aliasToKind map[string]string // lower(term) -> kind
	kindFields  map[string][]string
	patterns    map[string][]*regexp.Regexp
	neighbors   map[string][]string
	aliasRE     *regexp.Regexp // whole-word union of all terms; nil when none
}

// Load reads and parses the YAML catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse entity config %s: %w", path, err)
	}
	return NewCatalog(cfg), nil
}

// NewCatalog builds the reverse indices from a parsed configuration.
func NewCatalog(cfg Config) *Catalog {
	c := &Catalog{
		fieldToKind: make(map[string]string),
		aliasToKind: make(map[string]string),
		kindFields:  make(map[string][]string),
		patterns:    make(map[string][]*regexp.Regexp),
		neighbors:   make(map[string][]string),
	}

	kinds := make([]string, 0, len(cfg.Aliases))
	for kind := range cfg.Aliases {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	c.kinds = kinds

	var terms []string
	for _, kind := range kinds {
		entry := cfg.Aliases[kind]
		for _, f := range entry.Fields {
			c.fieldToKind[strings.ToLower(f)] = kind
		}
		c.kindFields[kind] = append([]string(nil), entry.Fields...)
		for _, t := range entry.Terms {
			lower := strings.ToLower(t)
			c.aliasToKind[lower] = kind
			terms = append(terms, regexp.QuoteMeta(lower))
		}
		// A kind's own name works as an alias too.
		c.aliasToKind[strings.ToLower(kind)] = kind
		terms = append(terms, regexp.QuoteMeta(strings.ToLower(kind)))
	}
	if len(terms) > 0 {
		// Longest-first so "cable modem" beats "cable".
		sort.Slice(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
		c.aliasRE = regexp.MustCompile(`(?i)\b(` + strings.Join(terms, "|") + `)\b`)
	}

	for kind, pats := range cfg.Patterns {
		for _, p := range pats {
			re, err := regexp.Compile(p)
			if err != nil {
				log.Printf("[Entity] Skipping invalid pattern for %s: %q (%v)", kind, p, err)
				continue
			}
			c.patterns[kind] = append(c.patterns[kind], re)
		}
	}

	for kind, ns := range cfg.Relationships {
		c.neighbors[kind] = append([]string(nil), ns...)
	}

	return c
}

// Kinds returns all configured entity kinds in sorted order.
func (c *Catalog) Kinds() []string { return c.kinds }

// KindForField returns the entity kind a payload field name belongs to.
func (c *Catalog) KindForField(field string) (string, bool) {
	kind, ok := c.fieldToKind[strings.ToLower(field)]
	return kind, ok
}

// FieldsForKind returns the canonical payload field names of a kind.
func (c *Catalog) FieldsForKind(kind string) []string {
	return c.kindFields[kind]
}

// PatternsForKind returns the compiled extraction patterns of a kind.
func (c *Catalog) PatternsForKind(kind string) []*regexp.Regexp {
	return c.patterns[kind]
}

// Neighbors returns the related kinds used by the relationship walker to
// prioritize exploration.
func (c *Catalog) Neighbors(kind string) []string {
	return c.neighbors[kind]
}

// KindsInQuery finds entity kinds referenced in free text via
// case-insensitive whole-word alias matching. Result order follows first
// appearance in the query; duplicates are removed.
func (c *Catalog) KindsInQuery(query string) []string {
	if c.aliasRE == nil {
		return nil
	}
	var kinds []string
	seen := make(map[string]bool)
	for _, m := range c.aliasRE.FindAllString(query, -1) {
		kind, ok := c.aliasToKind[strings.ToLower(m)]
		if ok && !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

// GroupFields buckets observed column or field names by entity kind.
// Unmatched names land in the "other" slice, preserving relative order.
func (c *Catalog) GroupFields(names []string) (map[string][]string, []string) {
	grouped := make(map[string][]string)
	var other []string
	for _, n := range names {
		if kind, ok := c.KindForField(n); ok {
			grouped[kind] = append(grouped[kind], n)
		} else {
			other = append(other, n)
		}
	}
	return grouped, other
}
