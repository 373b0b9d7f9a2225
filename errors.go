package jumplist

import "fmt"

// FormatError reports structurally invalid container data: a bad magic
// value, an unsupported version or a signature mismatch. It is always
// fatal for the file being parsed.
type FormatError struct {
	Offset int64
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid jump list data at offset 0x%08x: %s", e.Offset, e.Reason)
}

// TruncatedDataError reports that the byte stream ended before a required
// structure could be decoded.
type TruncatedDataError struct {
	Offset    int64
	Structure string
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("truncated %s at offset 0x%08x", e.Structure, e.Offset)
}

// StateError reports container misuse by the caller, such as enumerating
// entries before opening or closing a container twice.
type StateError struct {
	Op string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: invalid container state", e.Op)
}
