package lnk

import (
	"bytes"
	"encoding/binary"
)

// propertyStoreMarker is the little-endian serialized storage version,
// "1SPS" on the wire.
var propertyStoreMarker = []byte{0x31, 0x53, 0x50, 0x53}

// scanIDListPropertyKeys walks the shell items of a link target id list
// and collects property keys from items that embed a property store
// (users property view items). Shell item content is otherwise opaque to
// this package, so storages are located by their version marker rather
// than by decoding each item class.
func scanIDListPropertyKeys(data []byte) []PropertyKey {
	var keys []PropertyKey
	offset := 0
	for {
		if offset+2 > len(data) {
			return keys
		}
		itemSize := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
		if itemSize == 0 {
			// terminal item
			return keys
		}
		if itemSize < 2 || offset+itemSize > len(data) {
			return keys
		}
		item := data[offset : offset+itemSize]

		if index := bytes.Index(item, propertyStoreMarker); index >= 4 {
			if storeKeys, err := parsePropertyStore(item[index-4:]); err == nil {
				keys = append(keys, storeKeys...)
			}
		}

		offset += itemSize
	}
}
