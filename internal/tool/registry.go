package tool

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
)

// Registry manages all registered tools with thread-safe access.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool to the registry. If a tool with the same name
// already exists, it is overwritten and a warning is logged.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		log.Printf("[Registry] WARNING: overwriting existing tool %q", t.Name())
	}
	r.tools[t.Name()] = t
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})
	return result
}

// CatalogCompact renders the short tool catalog: one line per tool.
func (r *Registry) CatalogCompact() string {
	tools := r.List()
	if len(tools) == 0 {
		return "(no tools available)"
	}
	var sb strings.Builder
	for _, t := range tools {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", t.Name(), t.Description()))
	}
	return sb.String()
}

// CatalogDetailed renders the full tool catalog with signatures.
func (r *Registry) CatalogDetailed() string {
	tools := r.List()
	if len(tools) == 0 {
		return "(no tools available)"
	}
	var sb strings.Builder
	sb.WriteString("Available tools:\n")
	for _, t := range tools {
		sb.WriteString(fmt.Sprintf("\n### %s\n%s\n", t.Name(), t.Description()))
		for _, p := range t.Params() {
			flag := "optional"
			if p.Required {
				flag = "required"
			}
			line := fmt.Sprintf("- %s (%s, %s)", p.Name, p.Type, flag)
			if p.Default != nil {
				line += fmt.Sprintf(", default %v", p.Default)
			}
			if p.Description != "" {
				line += ": " + p.Description
			}
			sb.WriteString(line + "\n")
		}
	}
	return sb.String()
}
