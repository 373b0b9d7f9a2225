package jumplist

import (
	"errors"
	"io"
)

// errBufferTooSmall signals that a structure needs more bytes than the
// working buffer currently holds. mapBytes implementations return it to
// request another round of the grow loop in readStructureAt.
var errBufferTooSmall = errors.New("buffer too small")

// structure is a binary record that can be mapped onto a byte buffer and
// can report how many bytes its next mapping attempt needs. Fixed-size
// records report a constant hint. Variable-length records recompute the
// hint from the fields mapped so far, so the hint grows as more of the
// record becomes known.
type structure interface {
	sizeHint() int
	mapBytes(data []byte) error
}

// readStructureAt decodes a structure at the given offset of r and
// returns the number of bytes the structure occupies. Records whose size
// depends on their own content, such as a trailing length-prefixed
// string, are read incrementally until the size hint stabilizes. A hint
// that stops growing before the structure maps means the data ran out.
func readStructureAt(r io.ReaderAt, offset int64, name string, s structure) (int, error) {
	var data []byte
	have := 0
	want := s.sizeHint()

	for have != want {
		segment := make([]byte, want-have)
		if _, err := r.ReadAt(segment, offset+int64(have)); err != nil {
			return 0, &TruncatedDataError{Offset: offset, Structure: name}
		}
		data = append(data, segment...)

		err := s.mapBytes(data)
		if err == nil {
			return want, nil
		}
		if !errors.Is(err, errBufferTooSmall) {
			return 0, &FormatError{Offset: offset, Reason: err.Error()}
		}

		have = want
		want = s.sizeHint()
	}

	return 0, &TruncatedDataError{Offset: offset, Structure: name}
}
