package jumplist

import (
	"errors"
	"io"
)

// BoundedReader presents a fixed window of a parent stream as a stream of
// its own. The view borrows the parent and never closes it; closing the
// owning container invalidates every view handed out for it.
//
// The reader tracks its current position relative to the window start.
// Container scanners use that position to learn how many bytes a consumer
// actually read from an entry payload whose true length the container
// format does not declare.
type BoundedReader struct {
	r      io.ReaderAt
	base   int64
	size   int64
	offset int64
}

// NewBoundedReader returns a view over size bytes of r starting at base.
func NewBoundedReader(r io.ReaderAt, base, size int64) *BoundedReader {
	return &BoundedReader{r: r, base: base, size: size}
}

func (b *BoundedReader) Read(p []byte) (int, error) {
	if b.offset >= b.size {
		return 0, io.EOF
	}
	if remaining := b.size - b.offset; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := b.r.ReadAt(p, b.base+b.offset)
	b.offset += int64(n)
	if n > 0 {
		return n, nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

func (b *BoundedReader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("jumplist: negative read offset")
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if remaining := b.size - off; int64(len(p)) > remaining {
		n, err := b.r.ReadAt(p[:remaining], b.base+off)
		if err == nil {
			err = io.EOF
		}
		return n, err
	}
	return b.r.ReadAt(p, b.base+off)
}

func (b *BoundedReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = b.offset + offset
	case io.SeekEnd:
		abs = b.size + offset
	default:
		return 0, errors.New("jumplist: invalid seek whence")
	}
	if abs < 0 {
		return 0, errors.New("jumplist: negative seek position")
	}
	b.offset = abs
	return abs, nil
}

// Offset returns the current read position relative to the window start.
func (b *BoundedReader) Offset() int64 {
	return b.offset
}

// Size returns the window size in bytes.
func (b *BoundedReader) Size() int64 {
	return b.size
}
