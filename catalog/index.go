package catalog

import "strings"

// Index answers lookups of property definitions by their lookup key.
type Index struct {
	byKey map[string]*PropertyDefinition
}

// NewIndex builds an index over definitions. When several definitions
// share a lookup key the first one wins, matching how definition files
// are layered.
func NewIndex(definitions []*PropertyDefinition) *Index {
	byKey := make(map[string]*PropertyDefinition, len(definitions))
	for _, definition := range definitions {
		key := definition.LookupKey()
		if _, ok := byKey[key]; !ok {
			byKey[key] = definition
		}
	}
	return &Index{byKey: byKey}
}

// Lookup returns the definition for a {format-identifier}/identifier
// key, or nil if the key is unknown. The format identifier is matched
// case-insensitively; property names are not.
func (i *Index) Lookup(key string) *PropertyDefinition {
	return i.byKey[normalizeKey(key)]
}

func normalizeKey(key string) string {
	if end := strings.Index(key, "}/"); end > 0 {
		return strings.ToLower(key[:end+1]) + key[end+1:]
	}
	return key
}

// Len returns the number of indexed definitions.
func (i *Index) Len() int {
	return len(i.byKey)
}
