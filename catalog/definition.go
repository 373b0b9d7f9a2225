package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// StringSet accepts either a single scalar or a sequence in YAML, the
// way property definition files write single-valued fields.
type StringSet []string

func (s *StringSet) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = StringSet{node.Value}
		return nil
	case yaml.SequenceNode:
		var values []string
		if err := node.Decode(&values); err != nil {
			return err
		}
		*s = StringSet(values)
		return nil
	}
	return fmt.Errorf("unsupported YAML node kind for string set: %d", node.Kind)
}

func (s StringSet) MarshalYAML() (interface{}, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// Add inserts value into the set, keeping it sorted. Empty values and
// duplicates are ignored.
func (s *StringSet) Add(value string) {
	if value == "" {
		return
	}
	for _, existing := range *s {
		if existing == value {
			return
		}
	}
	*s = append(*s, value)
	sort.Strings(*s)
}

// Identifier is a property identifier within a format class: an integer
// for most properties, a name for properties of the string-names
// property set. It round-trips both through YAML.
type Identifier string

func (i *Identifier) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("unsupported YAML node kind for property identifier: %d", node.Kind)
	}
	*i = Identifier(node.Value)
	return nil
}

func (i Identifier) MarshalYAML() (interface{}, error) {
	if value, err := strconv.Atoi(string(i)); err == nil {
		return value, nil
	}
	return string(i), nil
}

// PropertyDefinition describes a Windows serialized property: the format
// class (or property set) it belongs to, its identifier within that
// class and the names it is known by.
type PropertyDefinition struct {
	Aliases            StringSet  `yaml:"alias,omitempty"`
	FormatClass        string     `yaml:"format_class,omitempty"`
	FormatIdentifier   string     `yaml:"format_identifier"`
	Names              StringSet  `yaml:"name,omitempty"`
	PropertyIdentifier Identifier `yaml:"property_identifier"`
	ShellPropertyKeys  StringSet  `yaml:"shell_property_key,omitempty"`
	ValueTypes         StringSet  `yaml:"value_type,omitempty"`
}

// LookupKey returns the key definition catalogs are indexed by:
// {format-identifier}/property-identifier.
func (d *PropertyDefinition) LookupKey() string {
	return fmt.Sprintf("{%s}/%s", strings.ToLower(d.FormatIdentifier), d.PropertyIdentifier)
}

// Merge folds the names, aliases, shell property keys and value types of
// other into d. Scalar fields keep d's value unless d left them empty.
func (d *PropertyDefinition) Merge(other *PropertyDefinition) {
	if d.FormatClass == "" {
		d.FormatClass = other.FormatClass
	}
	for _, value := range other.Aliases {
		d.Aliases.Add(value)
	}
	for _, value := range other.Names {
		d.Names.Add(value)
	}
	for _, value := range other.ShellPropertyKeys {
		d.ShellPropertyKeys.Add(value)
	}
	for _, value := range other.ValueTypes {
		d.ValueTypes.Add(value)
	}
}

func (d *PropertyDefinition) isZero() bool {
	return d.FormatIdentifier == "" && d.PropertyIdentifier == "" &&
		d.FormatClass == "" && len(d.Aliases) == 0 && len(d.Names) == 0 &&
		len(d.ShellPropertyKeys) == 0 && len(d.ValueTypes) == 0
}
