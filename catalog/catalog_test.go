package catalog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const definitionsFixture = `# winsps-kb property definitions
---
format_class: FMTID_Storage
format_identifier: b725f130-47ef-101a-a5f1-02608c9eebac
name:
- System.ItemNameDisplay
- System.ItemName
property_identifier: 10
shell_property_key: PKEY_ItemNameDisplay
value_type: VT_LPWSTR
---
format_identifier: d5cdd505-2e9c-101b-9397-08002b2cf9ae
name: System.AppUserModel.ID
property_identifier: AppId
`

func TestReadDefinitions(t *testing.T) {
	definitions, err := readDefinitions(strings.NewReader(definitionsFixture))
	require.NoError(t, err)
	require.Len(t, definitions, 2)

	first := definitions[0]
	require.Equal(t, "FMTID_Storage", first.FormatClass)
	require.Equal(t, StringSet{"System.ItemNameDisplay", "System.ItemName"}, first.Names)
	require.Equal(t, Identifier("10"), first.PropertyIdentifier)
	require.Equal(t, StringSet{"PKEY_ItemNameDisplay"}, first.ShellPropertyKeys)
	require.Equal(t, StringSet{"VT_LPWSTR"}, first.ValueTypes)
	require.Equal(t, "{b725f130-47ef-101a-a5f1-02608c9eebac}/10", first.LookupKey())

	second := definitions[1]
	require.Equal(t, StringSet{"System.AppUserModel.ID"}, second.Names)
	require.Equal(t, Identifier("AppId"), second.PropertyIdentifier)
}

func TestReadDefinitionsUnknownKey(t *testing.T) {
	_, err := readDefinitions(strings.NewReader(
		"format_identifier: b725f130-47ef-101a-a5f1-02608c9eebac\nproperty_identifier: 10\nbogus: true\n"))
	require.ErrorContains(t, err, "bogus")
}

func TestReadDefinitionsMissingFormatIdentifier(t *testing.T) {
	_, err := readDefinitions(strings.NewReader("property_identifier: 10\n"))
	require.ErrorContains(t, err, "missing format identifier")
}

func TestReadDefinitionsBadFormatIdentifier(t *testing.T) {
	_, err := readDefinitions(strings.NewReader(
		"format_identifier: not-a-guid\nproperty_identifier: 10\n"))
	require.ErrorContains(t, err, "invalid format identifier")
}

func TestReadDefinitionsMissingPropertyIdentifier(t *testing.T) {
	_, err := readDefinitions(strings.NewReader(
		"format_identifier: b725f130-47ef-101a-a5f1-02608c9eebac\n"))
	require.ErrorContains(t, err, "missing property identifier")
}

func TestWriteDefinitionsRoundTrip(t *testing.T) {
	definitions, err := readDefinitions(strings.NewReader(definitionsFixture))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDefinitions(&buf, definitions))
	require.True(t, strings.HasPrefix(buf.String(), "# winsps-kb property definitions\n"))

	// single-valued sets come back out as scalars
	require.Contains(t, buf.String(), "name: System.AppUserModel.ID")
	// integer identifiers come back out unquoted
	require.Contains(t, buf.String(), "property_identifier: 10")

	reparsed, err := readDefinitions(&buf)
	require.NoError(t, err)
	require.Equal(t, definitions, reparsed)
}

func TestMerge(t *testing.T) {
	first := &PropertyDefinition{
		FormatIdentifier:   "b725f130-47ef-101a-a5f1-02608c9eebac",
		PropertyIdentifier: "10",
		Names:              StringSet{"System.ItemNameDisplay"},
		ValueTypes:         StringSet{"VT_LPWSTR"},
	}
	second := &PropertyDefinition{
		FormatIdentifier:   "B725F130-47EF-101A-A5F1-02608C9EEBAC",
		PropertyIdentifier: "10",
		FormatClass:        "FMTID_Storage",
		Names:              StringSet{"System.ItemName"},
		ValueTypes:         StringSet{"VT_LPWSTR"},
	}
	other := &PropertyDefinition{
		FormatIdentifier:   "446d16b1-8dad-4870-a748-402ea43d788c",
		PropertyIdentifier: "104",
	}

	merged := Merge([]*PropertyDefinition{first, other}, []*PropertyDefinition{second})
	require.Len(t, merged, 2)

	// sorted by lookup key
	require.Equal(t, "104", string(merged[0].PropertyIdentifier))

	folded := merged[1]
	require.Equal(t, "FMTID_Storage", folded.FormatClass)
	require.Equal(t, StringSet{"System.ItemName", "System.ItemNameDisplay"}, folded.Names)
	require.Equal(t, StringSet{"VT_LPWSTR"}, folded.ValueTypes)
}

func TestStringSetAdd(t *testing.T) {
	var set StringSet
	set.Add("b")
	set.Add("a")
	set.Add("b")
	set.Add("")
	require.Equal(t, StringSet{"a", "b"}, set)
}

func TestIndexLookup(t *testing.T) {
	definitions := []*PropertyDefinition{
		{
			FormatIdentifier:   "b725f130-47ef-101a-a5f1-02608c9eebac",
			PropertyIdentifier: "10",
			Names:              StringSet{"System.ItemNameDisplay"},
		},
		{
			FormatIdentifier:   "d5cdd505-2e9c-101b-9397-08002b2cf9ae",
			PropertyIdentifier: "AppId",
		},
	}
	index := NewIndex(definitions)
	require.Equal(t, 2, index.Len())

	match := index.Lookup("{B725F130-47EF-101A-A5F1-02608C9EEBAC}/10")
	require.NotNil(t, match)
	require.Equal(t, StringSet{"System.ItemNameDisplay"}, match.Names)

	// property names stay case-sensitive
	require.NotNil(t, index.Lookup("{d5cdd505-2e9c-101b-9397-08002b2cf9ae}/AppId"))
	require.Nil(t, index.Lookup("{d5cdd505-2e9c-101b-9397-08002b2cf9ae}/appid"))
	require.Nil(t, index.Lookup("{b725f130-47ef-101a-a5f1-02608c9eebac}/11"))
}
