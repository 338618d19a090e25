package synth

import (
	"sort"
	"strings"
)

// DefaultVoices are the voice ids accepted when no catalog is configured.
var DefaultVoices = []string{
	"en-US-1",
	"en-US-2",
	"en-GB-1",
	"de-DE-1",
	"es-ES-1",
	"fr-FR-1",
}

// Catalog is the set of voice identifiers the submission API accepts.
type Catalog struct {
	ids map[string]struct{}
}

// NewCatalog builds a catalog from the given ids, ignoring blanks. With no
// usable ids it falls back to DefaultVoices.
func NewCatalog(ids []string) *Catalog {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = struct{}{}
		}
	}
	if len(set) == 0 {
		for _, id := range DefaultVoices {
			set[id] = struct{}{}
		}
	}
	return &Catalog{ids: set}
}

func (c *Catalog) Known(id string) bool {
	_, ok := c.ids[id]
	return ok
}

// IDs returns the catalog contents sorted, for error details and listings.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
