package jumplist

import (
	"io"

	"github.com/richardlehane/mscfb"
)

// rootEntryName is the name the compound file format mandates for the
// root storage entry.
const rootEntryName = "Root Entry"

// AutomaticDestinationsFile is an automatic destinations jump list
// (.automaticDestinations-ms): an OLE compound file holding one shortcut
// record stream per tracked destination plus a DestList index stream.
type AutomaticDestinationsFile struct {
	doc    *mscfb.Reader
	opened bool
}

// Open reads the compound file directory and validates the DestList
// index stream. The per-destination streams are left untouched until
// WalkEntries.
func (f *AutomaticDestinationsFile) Open(r io.ReaderAt) error {
	if f.opened {
		return &StateError{Op: "open automatic destinations file"}
	}

	doc, err := mscfb.New(r)
	if err != nil {
		return &FormatError{Reason: err.Error()}
	}

	var destList *mscfb.File
	for _, stream := range doc.File {
		if len(stream.Path) == 0 && stream.Name == destListStreamName {
			destList = stream
			break
		}
	}
	if destList == nil {
		return &FormatError{Reason: "missing DestList stream"}
	}
	if err := readDestList(destList, destList.Size); err != nil {
		return err
	}

	f.doc = doc
	f.opened = true
	return nil
}

// WalkEntries calls fn once for every destination stream, in directory
// order. Each entry's identifier is the stream name and its payload is a
// bounded view of the stream. Walking stops at the first error fn
// returns.
func (f *AutomaticDestinationsFile) WalkEntries(fn func(*Entry) error) error {
	if !f.opened {
		return &StateError{Op: "walk automatic destinations entries"}
	}

	for _, stream := range f.doc.File {
		if len(stream.Path) > 0 || stream.Name == destListStreamName || stream.Name == rootEntryName {
			continue
		}
		entry := &Entry{
			Identifier: stream.Name,
			Payload:    NewBoundedReader(stream, 0, stream.Size),
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the container handle and invalidates the payloads
// handed out by WalkEntries. Closing an unopened or already closed
// container is a StateError.
func (f *AutomaticDestinationsFile) Close() error {
	if !f.opened {
		return &StateError{Op: "close automatic destinations file"}
	}
	f.doc = nil
	f.opened = false
	return nil
}
