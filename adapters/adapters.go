// Package adapters describes, per foreground application, whether and how it
// accepts file mentions.
package adapters

import (
	"sort"
	"strings"
)

// Capabilities is the mention surface of one application.
type Capabilities struct {
	DisplayName          string `toml:"display_name" json:"displayName"`
	MentionPrefix        string `toml:"mention_prefix" json:"mentionPrefix"`
	SupportsFileMentions bool   `toml:"file_mentions" json:"supportsFileMentions"`
	SupportsCodeContext  bool   `toml:"code_context" json:"supportsCodeContext"`
	SupportsDocsMentions bool   `toml:"docs_mentions" json:"supportsDocsMentions"`
	SupportsDiffContext  bool   `toml:"diff_context" json:"supportsDiffContext"`
	SupportsWebContext   bool   `toml:"web_context" json:"supportsWebContext"`
	SupportsChatHistory  bool   `toml:"chat_history" json:"supportsChatHistory"`
}

// Fallback is returned for identifiers the registry does not know. It never accepts mentions.
var Fallback = Capabilities{DisplayName: "Unknown App"}

// Entry is one row of the capabilities table. Aliases (pre-release builds,
// helper processes) resolve to the same capabilities as ID.
type Entry struct {
	ID      string   `toml:"id"`
	Aliases []string `toml:"aliases"`
	Capabilities
}

// Registry is an immutable lookup from application identifier to Capabilities.
type Registry struct {
	byID    map[string]Capabilities
	primary map[string]string
}

// NewRegistry builds a registry from table. Identifiers compare case-insensitively.
// A later entry with the same ID or alias replaces an earlier one.
func NewRegistry(table []Entry) *Registry {
	r := &Registry{
		byID:    make(map[string]Capabilities),
		primary: make(map[string]string),
	}
	for _, entry := range table {
		id := normalizeID(entry.ID)
		if id == "" {
			continue
		}
		r.byID[id] = entry.Capabilities
		r.primary[id] = id
		for _, alias := range entry.Aliases {
			if alias = normalizeID(alias); alias != "" {
				r.primary[alias] = id
			}
		}
	}
	return r
}

// Adapter returns the capabilities for id, or Fallback when id is unknown.
func (r *Registry) Adapter(id string) Capabilities {
	if primary, ok := r.primary[normalizeID(id)]; ok {
		return r.byID[primary]
	}
	return Fallback
}

// HasAdapter reports whether id is explicitly known, directly or as an alias.
func (r *Registry) HasAdapter(id string) bool {
	_, ok := r.primary[normalizeID(id)]
	return ok
}

// IDs returns the primary identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
