package internal

import (
	"encoding/binary"
	"unicode/utf16"
)

// ReadString reads a null-terminated ASCII string starting at offset.
func ReadString(data []byte, offset int) string {
	end := offset
	for end < len(data) && data[end] != 0 {
		end++
	}
	return string(data[offset:end])
}

// ReadUnicode reads a null-terminated UTF-16LE string starting at offset.
func ReadUnicode(data []byte, offset int) string {
	encoded := []uint16{}
	for {
		if len(data) < offset+2 {
			return string(utf16.Decode(encoded))
		}
		value := binary.LittleEndian.Uint16(data[offset : offset+2])
		if value == 0 {
			return string(utf16.Decode(encoded))
		}
		encoded = append(encoded, value)
		offset += 2
	}
}

// DecodeUnicode decodes a UTF-16LE byte slice of known length, without
// looking for a terminator. A trailing odd byte is ignored.
func DecodeUnicode(data []byte) string {
	encoded := make([]uint16, 0, len(data)/2)
	for offset := 0; offset+1 < len(data); offset += 2 {
		encoded = append(encoded, binary.LittleEndian.Uint16(data[offset:offset+2]))
	}
	return string(utf16.Decode(encoded))
}
