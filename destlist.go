package jumplist

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/andrewstucki/jumplist/internal"
)

// destListStreamName is the name of the index stream inside an automatic
// destinations container.
const destListStreamName = "DestList"

const destListHeaderSize = 32

// destListHeader is the fixed-size header of the DestList index stream.
// Only the format version matters for parsing; it selects the entry
// layout.
type destListHeader struct {
	formatVersion   uint32
	numberOfEntries uint32
}

func (h *destListHeader) sizeHint() int {
	return destListHeaderSize
}

func (h *destListHeader) mapBytes(data []byte) error {
	if len(data) < destListHeaderSize {
		return errBufferTooSmall
	}
	h.formatVersion = binary.LittleEndian.Uint32(data[0:4])
	h.numberOfEntries = binary.LittleEndian.Uint32(data[4:8])
	return nil
}

// destListEntry is a variable-length DestList record. The path size field
// sits at the end of the fixed part, so the record's true size is only
// known after mapping the fixed part first.
//
// Format version 1 has a 112 byte fixed part before the path size.
// Version 2 and later has a 128 byte fixed part and a 4 byte trailer
// after the path.
type destListEntry struct {
	formatVersion uint32
	entryNumber   uint32
	pinStatus     uint32
	pathSize      uint16
	path          string
}

func newDestListEntry(formatVersion uint32) *destListEntry {
	return &destListEntry{formatVersion: formatVersion}
}

// fixedSize is the entry length up to and including the path size field.
func (e *destListEntry) fixedSize() int {
	if e.formatVersion == 1 {
		return 114
	}
	return 130
}

func (e *destListEntry) trailerSize() int {
	if e.formatVersion == 1 {
		return 0
	}
	return 4
}

func (e *destListEntry) sizeHint() int {
	return e.fixedSize() + 2*int(e.pathSize) + e.trailerSize()
}

func (e *destListEntry) mapBytes(data []byte) error {
	fixed := e.fixedSize()
	if len(data) < fixed {
		return errBufferTooSmall
	}
	e.entryNumber = binary.LittleEndian.Uint32(data[88:92])
	e.pinStatus = binary.LittleEndian.Uint32(data[108:112])
	e.pathSize = binary.LittleEndian.Uint16(data[fixed-2 : fixed])

	total := fixed + 2*int(e.pathSize) + e.trailerSize()
	if len(data) < total {
		return errBufferTooSmall
	}
	e.path = internal.DecodeUnicode(data[fixed : fixed+2*int(e.pathSize)])
	return nil
}

// readDestList decodes and validates the DestList index stream: the
// header version selects the entry layout and every entry must map
// cleanly up to the end of the stream. The decoded content is not used
// beyond validation; entry payloads come from the container's other
// streams. An empty stream is a valid, empty jump list.
func readDestList(r io.ReaderAt, size int64) error {
	if size == 0 {
		return nil
	}

	header := &destListHeader{}
	n, err := readStructureAt(r, 0, "DestList header", header)
	if err != nil {
		return err
	}

	switch header.formatVersion {
	case 1, 2, 3, 4:
	default:
		return &FormatError{
			Reason: fmt.Sprintf("unsupported DestList format version: %d", header.formatVersion),
		}
	}

	for offset := int64(n); offset < size; {
		entry := newDestListEntry(header.formatVersion)
		n, err := readStructureAt(r, offset, "DestList entry", entry)
		if err != nil {
			return err
		}
		offset += int64(n)
	}
	return nil
}
