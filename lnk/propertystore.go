package lnk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/andrewstucki/jumplist/internal"
)

// serializedStorageVersion is the "1SPS" marker of a serialized property
// storage.
const serializedStorageVersion = 0x53505331

// stringNamesFormatIdentifier marks storages whose properties are
// identified by name instead of by integer identifier.
var stringNamesFormatIdentifier = uuid.MustParse("d5cdd505-2e9c-101b-9397-08002b2cf9ae")

// PropertyKey identifies one serialized property observed in a property
// store: the format class (or property set) GUID plus the identifier or
// name of the property within it.
type PropertyKey struct {
	FormatIdentifier   string `json:"formatIdentifier"`
	PropertyIdentifier string `json:"propertyIdentifier"`
	ValueType          string `json:"valueType,omitempty"`
}

// LookupKey formats the key the way property definition catalogs index
// them: {format-identifier}/property-identifier.
func (k PropertyKey) LookupKey() string {
	return fmt.Sprintf("{%s}/%s", k.FormatIdentifier, k.PropertyIdentifier)
}

// parsePropertyStore collects the property keys of a serialized property
// store: a sequence of storages, each holding a version marker, a format
// class GUID and property value records, terminated by a zero storage
// size. Property values themselves are not decoded beyond their type.
func parsePropertyStore(data []byte) ([]PropertyKey, error) {
	var keys []PropertyKey
	offset := 0
	for {
		if offset+4 > len(data) {
			return keys, nil
		}
		storageSize := int(binary.LittleEndian.Uint32(data[offset : offset+4]))
		if storageSize == 0 {
			return keys, nil
		}
		if storageSize < 28 || offset+storageSize > len(data) {
			return keys, errors.New("invalid property storage size")
		}
		storage := data[offset : offset+storageSize]
		if binary.LittleEndian.Uint32(storage[4:8]) != serializedStorageVersion {
			return keys, errors.New("invalid property storage version")
		}

		formatIdentifier := guidFromWindows(storage[8:24])
		stringNames := formatIdentifier == stringNamesFormatIdentifier

		values := storage[24:]
		for {
			if len(values) < 4 {
				break
			}
			valueSize := int(binary.LittleEndian.Uint32(values[0:4]))
			if valueSize == 0 {
				break
			}
			if valueSize < 9 || valueSize > len(values) {
				return keys, errors.New("invalid property value size")
			}
			value := values[:valueSize]

			var propertyIdentifier string
			typedOffset := 9
			if stringNames {
				nameSize := int(binary.LittleEndian.Uint32(value[4:8]))
				if 9+nameSize > valueSize {
					return keys, errors.New("invalid property name size")
				}
				propertyIdentifier = internal.ReadUnicode(value[9:9+nameSize], 0)
				typedOffset = 9 + nameSize
			} else {
				propertyIdentifier = strconv.FormatUint(
					uint64(binary.LittleEndian.Uint32(value[4:8])), 10)
			}

			valueType := ""
			if typedOffset+2 <= valueSize {
				valueType = valueTypeName(binary.LittleEndian.Uint16(value[typedOffset : typedOffset+2]))
			}

			keys = append(keys, PropertyKey{
				FormatIdentifier:   formatIdentifier.String(),
				PropertyIdentifier: propertyIdentifier,
				ValueType:          valueType,
			})
			values = values[valueSize:]
		}

		offset += storageSize
	}
}

// guidFromWindows converts a little-endian Windows GUID to its canonical
// form. The first three groups are byte swapped, the last two are not.
func guidFromWindows(data []byte) uuid.UUID {
	var b [16]byte
	b[0], b[1], b[2], b[3] = data[3], data[2], data[1], data[0]
	b[4], b[5] = data[5], data[4]
	b[6], b[7] = data[7], data[6]
	copy(b[8:], data[8:16])
	guid, _ := uuid.FromBytes(b[:])
	return guid
}

var valueTypeNames = map[uint16]string{
	0x0000: "VT_EMPTY",
	0x0001: "VT_NULL",
	0x0002: "VT_I2",
	0x0003: "VT_I4",
	0x0004: "VT_R4",
	0x0005: "VT_R8",
	0x0006: "VT_CY",
	0x0007: "VT_DATE",
	0x0008: "VT_BSTR",
	0x000a: "VT_ERROR",
	0x000b: "VT_BOOL",
	0x000e: "VT_DECIMAL",
	0x0010: "VT_I1",
	0x0011: "VT_UI1",
	0x0012: "VT_UI2",
	0x0013: "VT_UI4",
	0x0014: "VT_I8",
	0x0015: "VT_UI8",
	0x0016: "VT_INT",
	0x0017: "VT_UINT",
	0x001e: "VT_LPSTR",
	0x001f: "VT_LPWSTR",
	0x0040: "VT_FILETIME",
	0x0041: "VT_BLOB",
	0x0047: "VT_CF",
	0x0048: "VT_CLSID",
	0x0049: "VT_STREAMED_OBJECT",
}

func valueTypeName(valueType uint16) string {
	name, ok := valueTypeNames[valueType&0x0fff]
	if !ok {
		return fmt.Sprintf("0x%04x", valueType)
	}
	if valueType&0x1000 != 0 {
		return "VT_VECTOR|" + name
	}
	return name
}
