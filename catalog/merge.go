package catalog

import "sort"

// Merge combines property definitions from multiple files, folding
// definitions with the same lookup key into one. The result is sorted by
// lookup key.
func Merge(definitions ...[]*PropertyDefinition) []*PropertyDefinition {
	byKey := map[string]*PropertyDefinition{}
	for _, batch := range definitions {
		for _, definition := range batch {
			key := definition.LookupKey()
			existing, ok := byKey[key]
			if !ok {
				merged := &PropertyDefinition{
					FormatIdentifier:   definition.FormatIdentifier,
					PropertyIdentifier: definition.PropertyIdentifier,
				}
				byKey[key] = merged
				existing = merged
			}
			existing.Merge(definition)
		}
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merged := make([]*PropertyDefinition, len(keys))
	for i, key := range keys {
		merged[i] = byKey[key]
	}
	return merged
}
