package voice

import (
	"fmt"
	"sort"
	"strings"
)

// VoiceTable maps speaker names to synthesis voice identifiers. Names are
// matched case-insensitively.
type VoiceTable map[string]string

// NewVoiceTable builds a table from raw config entries
func NewVoiceTable(entries map[string]string) VoiceTable {
	table := make(VoiceTable, len(entries))
	for name, id := range entries {
		table[strings.ToLower(strings.TrimSpace(name))] = id
	}
	return table
}

// Lookup returns the voice ID for a speaker name
func (t VoiceTable) Lookup(name string) (string, error) {
	id, ok := t[strings.ToLower(strings.TrimSpace(name))]
	if !ok || id == "" {
		return "", fmt.Errorf("unknown voice %q", name)
	}
	return id, nil
}

// Names returns the configured speaker names in sorted order
func (t VoiceTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply returns p tagged with the named voice
func (t VoiceTable) Apply(p Parameters, name string) (Parameters, error) {
	id, err := t.Lookup(name)
	if err != nil {
		return p, err
	}
	p.VoiceID = id
	return p, nil
}
