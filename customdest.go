package jumplist

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/andrewstucki/jumplist/internal"
)

// lnkClassIdentifier frames each shortcut record inside a custom
// destinations file. The format has no magic value of its own, so the
// first occurrence of this GUID doubles as the format signature.
var lnkClassIdentifier = []byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xc0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

const categoryFooterSignature = 0xbabffbab

// customFileHeader is the fixed file header of a custom destinations
// file.
type customFileHeader struct {
	unknown1         uint32
	headerValuesType uint32
}

func (h *customFileHeader) sizeHint() int {
	return 8
}

func (h *customFileHeader) mapBytes(data []byte) error {
	if len(data) < 8 {
		return errBufferTooSmall
	}
	h.unknown1 = binary.LittleEndian.Uint32(data[0:4])
	h.headerValuesType = binary.LittleEndian.Uint32(data[4:8])
	return nil
}

// customHeaderValues is the block that follows the file header. Type 0
// carries a length-prefixed UTF-16 string before the category count, so
// its size is only known after a first mapping attempt. Types 1 and 2
// carry the category count alone. The block is decoded to advance past
// it and to learn the category count; nothing else is retained.
type customHeaderValues struct {
	valuesType         uint32
	numberOfCharacters uint16
	numberOfCategories uint32
}

func newCustomHeaderValues(valuesType uint32) *customHeaderValues {
	return &customHeaderValues{valuesType: valuesType}
}

func (v *customHeaderValues) sizeHint() int {
	if v.valuesType == 0 {
		return 2 + 2*int(v.numberOfCharacters) + 4
	}
	return 4
}

func (v *customHeaderValues) mapBytes(data []byte) error {
	if v.valuesType != 0 {
		if len(data) < 4 {
			return errBufferTooSmall
		}
		v.numberOfCategories = binary.LittleEndian.Uint32(data[0:4])
		return nil
	}

	if len(data) < 2 {
		return errBufferTooSmall
	}
	v.numberOfCharacters = binary.LittleEndian.Uint16(data[0:2])
	total := 2 + 2*int(v.numberOfCharacters) + 4
	if len(data) < total {
		return errBufferTooSmall
	}
	v.numberOfCategories = binary.LittleEndian.Uint32(data[total-4 : total])
	return nil
}

// categoryHeader precedes each category of entries.
type categoryHeader struct {
	categoryType uint32
}

func (h *categoryHeader) sizeHint() int {
	return 4
}

func (h *categoryHeader) mapBytes(data []byte) error {
	if len(data) < 4 {
		return errBufferTooSmall
	}
	h.categoryType = binary.LittleEndian.Uint32(data[0:4])
	return nil
}

// categoryValues is the type-specific block after a category header.
// Type 0 categories carry a name and an entry count, type 2 categories
// an entry count alone. Type 1 categories reference a known category by
// identifier and declare no entry count; the scanner falls back to
// footer-terminated scanning for those.
type categoryValues struct {
	categoryType       uint32
	numberOfCharacters uint16
	name               string
	numberOfEntries    uint32
}

func newCategoryValues(categoryType uint32) *categoryValues {
	return &categoryValues{categoryType: categoryType}
}

// scanToFooter reports whether the category declares no entry count and
// must be scanned until its footer signature shows up.
func (v *categoryValues) scanToFooter() bool {
	return v.categoryType == 1
}

func (v *categoryValues) sizeHint() int {
	if v.categoryType == 0 {
		return 2 + 2*int(v.numberOfCharacters) + 4
	}
	return 4
}

func (v *categoryValues) mapBytes(data []byte) error {
	if v.categoryType != 0 {
		if len(data) < 4 {
			return errBufferTooSmall
		}
		// Type 1 holds a known category identifier, type 2 an entry
		// count.
		if v.categoryType == 2 {
			v.numberOfEntries = binary.LittleEndian.Uint32(data[0:4])
		}
		return nil
	}

	if len(data) < 2 {
		return errBufferTooSmall
	}
	v.numberOfCharacters = binary.LittleEndian.Uint16(data[0:2])
	total := 2 + 2*int(v.numberOfCharacters) + 4
	if len(data) < total {
		return errBufferTooSmall
	}
	v.name = internal.DecodeUnicode(data[2 : 2+2*int(v.numberOfCharacters)])
	v.numberOfEntries = binary.LittleEndian.Uint32(data[total-4 : total])
	return nil
}

// categoryFooter terminates a category.
type categoryFooter struct {
	signature uint32
}

func (f *categoryFooter) sizeHint() int {
	return 4
}

func (f *categoryFooter) mapBytes(data []byte) error {
	if len(data) < 4 {
		return errBufferTooSmall
	}
	f.signature = binary.LittleEndian.Uint32(data[0:4])
	if f.signature != categoryFooterSignature {
		return fmt.Errorf("invalid category footer signature: 0x%08x", f.signature)
	}
	return nil
}

// CustomDestinationsFile is a custom destinations jump list
// (.customDestinations-ms): a raw container framing shortcut records
// between GUID markers, grouped into categories that each end with a
// footer signature.
type CustomDestinationsFile struct {
	r          io.ReaderAt
	size       int64
	dataOffset int64
	categories uint32
	opened     bool
}

// Open decodes and validates the file header and the header value block
// that follows it. Entry discovery happens in WalkEntries: entry
// boundaries are only discoverable sequentially, with the caller's
// shortcut decoder reporting how far each record reached.
func (f *CustomDestinationsFile) Open(r io.ReaderAt, size int64) error {
	if f.opened {
		return &StateError{Op: "open custom destinations file"}
	}

	header := &customFileHeader{}
	n, err := readStructureAt(r, 0, "file header", header)
	if err != nil {
		return err
	}
	if header.unknown1 != 2 {
		return &FormatError{Reason: fmt.Sprintf("unsupported file header value: %d", header.unknown1)}
	}
	if header.headerValuesType > 2 {
		return &FormatError{Reason: fmt.Sprintf("unsupported header values type: %d", header.headerValuesType)}
	}

	values := newCustomHeaderValues(header.headerValuesType)
	m, err := readStructureAt(r, int64(n), "file header values", values)
	if err != nil {
		return err
	}

	f.r = r
	f.size = size
	f.dataOffset = int64(n + m)
	f.categories = values.numberOfCategories
	f.opened = true
	return nil
}

// WalkEntries scans the categories in declaration order and calls fn for
// each shortcut record found. fn must finish reading the entry payload
// before returning: the payload window is a conservative upper bound and
// the scanner advances by the number of bytes fn actually consumed, read
// back from the payload's offset. The container never trusts an entry
// length declared by its own metadata.
//
// Local corruption after at least one successful entry ends the scan
// with a logged warning instead of an error; the entries already
// delivered stand.
func (f *CustomDestinationsFile) WalkEntries(fn func(*Entry) error) error {
	if !f.opened {
		return &StateError{Op: "walk custom destinations entries"}
	}

	offset := f.dataOffset
	entrySeen := false

	for c := uint32(0); c < f.categories; c++ {
		header := &categoryHeader{}
		n, err := readStructureAt(f.r, offset, "category header", header)
		if err != nil {
			if entrySeen {
				f.warn(offset, err)
				return nil
			}
			return err
		}
		if header.categoryType > 2 {
			return &FormatError{
				Offset: offset,
				Reason: fmt.Sprintf("unsupported category type: %d", header.categoryType),
			}
		}
		offset += int64(n)

		values := newCategoryValues(header.categoryType)
		n, err = readStructureAt(f.r, offset, "category header values", values)
		if err != nil {
			if entrySeen {
				f.warn(offset, err)
				return nil
			}
			return err
		}
		offset += int64(n)

		aborted := false
		guid := make([]byte, 16)
		for i := uint32(0); values.scanToFooter() || i < values.numberOfEntries; i++ {
			if f.size-offset < 16 {
				break
			}
			if _, err := f.r.ReadAt(guid, offset); err != nil {
				err = &TruncatedDataError{Offset: offset, Structure: "entry header"}
				if entrySeen {
					f.warn(offset, err)
					return nil
				}
				return err
			}

			if bytes.Equal(guid, lnkClassIdentifier) {
				payload := NewBoundedReader(f.r, offset+16, f.size-offset-16)
				entry := &Entry{
					Identifier: fmt.Sprintf("0x%08x", offset+16),
					Payload:    payload,
				}
				entrySeen = true
				if err := fn(entry); err != nil {
					return err
				}
				offset += 16 + payload.Offset()
				continue
			}

			if binary.LittleEndian.Uint32(guid[0:4]) == categoryFooterSignature {
				// Early category termination; leave the footer in place
				// for the read below.
				break
			}

			if !entrySeen {
				return &FormatError{Offset: offset, Reason: "invalid entry header"}
			}
			f.warn(offset, errors.New("invalid entry header"))
			aborted = true
			break
		}
		if aborted {
			return nil
		}

		footer := &categoryFooter{}
		n, err = readStructureAt(f.r, offset, "category footer", footer)
		if err != nil {
			var truncated *TruncatedDataError
			if entrySeen && errors.As(err, &truncated) {
				f.warn(offset, err)
				return nil
			}
			return err
		}
		offset += int64(n)
	}
	return nil
}

func (f *CustomDestinationsFile) warn(offset int64, err error) {
	logger.Warn().
		Int64("offset", offset).
		Err(err).
		Msg("ending custom destinations scan early")
}

// Close releases the container handle and invalidates the payloads
// handed out by WalkEntries. Closing an unopened or already closed
// container is a StateError.
func (f *CustomDestinationsFile) Close() error {
	if !f.opened {
		return &StateError{Op: "close custom destinations file"}
	}
	f.r = nil
	f.size = 0
	f.opened = false
	return nil
}
