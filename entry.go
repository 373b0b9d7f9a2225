package jumplist

// Entry is a single tracked destination inside a jump list container: an
// identifier plus a bounded view of the embedded shortcut record bytes.
// The payload is only valid while the owning container remains open.
type Entry struct {
	Identifier string
	Payload    *BoundedReader
}
