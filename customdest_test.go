package jumplist

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type customFixture struct {
	bytes.Buffer
}

func (f *customFixture) u16(v uint16) {
	binary.Write(&f.Buffer, binary.LittleEndian, v)
}

func (f *customFixture) u32(v uint32) {
	binary.Write(&f.Buffer, binary.LittleEndian, v)
}

// fileHeader writes the file header plus a type 0 header value block with
// no name.
func (f *customFixture) fileHeader(categories uint32) {
	f.u32(2)
	f.u32(0)
	f.u16(0)
	f.u32(categories)
}

// category writes a type 0 category header with an empty name.
func (f *customFixture) category(entries uint32) {
	f.u32(0)
	f.u16(0)
	f.u32(entries)
}

func (f *customFixture) entry(payload []byte) {
	f.Write(lnkClassIdentifier)
	f.Write(payload)
}

func (f *customFixture) footer() {
	f.u32(categoryFooterSignature)
}

func (f *customFixture) open(t *testing.T) *CustomDestinationsFile {
	file := &CustomDestinationsFile{}
	require.NoError(t, file.Open(bytes.NewReader(f.Bytes()), int64(f.Len())))
	return file
}

// collect walks the container reading exactly sizes[i] bytes from each
// payload, standing in for a shortcut decoder that knows where its
// record ends.
func collect(t *testing.T, file *CustomDestinationsFile, sizes []int64) ([]string, [][]byte, error) {
	var identifiers []string
	var payloads [][]byte
	err := file.WalkEntries(func(entry *Entry) error {
		data := make([]byte, sizes[len(identifiers)])
		_, err := io.ReadFull(entry.Payload, data)
		require.NoError(t, err)
		identifiers = append(identifiers, entry.Identifier)
		payloads = append(payloads, data)
		return nil
	})
	return identifiers, payloads, err
}

func TestWalkEntriesSingleCategory(t *testing.T) {
	first := bytes.Repeat([]byte{0xaa}, 100)
	second := bytes.Repeat([]byte{0xbb}, 60)

	var fx customFixture
	fx.fileHeader(1)
	fx.category(2)
	fx.entry(first)
	fx.entry(second)
	fx.footer()

	file := fx.open(t)
	defer file.Close()

	identifiers, payloads, err := collect(t, file, []int64{100, 60})
	require.NoError(t, err)
	require.Equal(t, []string{"0x00000028", "0x0000009c"}, identifiers)
	require.Equal(t, [][]byte{first, second}, payloads)
}

func TestWalkEntriesMultipleCategories(t *testing.T) {
	first := bytes.Repeat([]byte{0x11}, 40)
	second := bytes.Repeat([]byte{0x22}, 24)

	var fx customFixture
	fx.fileHeader(2)
	fx.category(1)
	fx.entry(first)
	fx.footer()
	fx.category(1)
	fx.entry(second)
	fx.footer()

	file := fx.open(t)
	defer file.Close()

	identifiers, payloads, err := collect(t, file, []int64{40, 24})
	require.NoError(t, err)
	require.Len(t, identifiers, 2)
	require.Equal(t, [][]byte{first, second}, payloads)
}

func TestWalkEntriesKnownCategory(t *testing.T) {
	payload := bytes.Repeat([]byte{0xcc}, 50)

	// header values type 1 carries the category count alone, and the
	// type 1 category declares no entry count: the scan runs until the
	// footer shows up.
	var fx customFixture
	fx.u32(2)
	fx.u32(1)
	fx.u32(1)
	fx.u32(1)    // category type 1
	fx.u32(0x05) // known category identifier
	fx.entry(payload)
	fx.footer()

	file := fx.open(t)
	defer file.Close()

	identifiers, payloads, err := collect(t, file, []int64{50})
	require.NoError(t, err)
	require.Len(t, identifiers, 1)
	require.Equal(t, payload, payloads[0])
}

func TestWalkEntriesEarlyFooter(t *testing.T) {
	payload := bytes.Repeat([]byte{0xdd}, 32)

	// declared five entries, but the footer shows up after one
	var fx customFixture
	fx.fileHeader(1)
	fx.category(5)
	fx.entry(payload)
	fx.footer()

	file := fx.open(t)
	defer file.Close()

	identifiers, _, err := collect(t, file, []int64{32})
	require.NoError(t, err)
	require.Len(t, identifiers, 1)
}

func TestWalkEntriesInvalidFirstEntry(t *testing.T) {
	var fx customFixture
	fx.fileHeader(1)
	fx.category(1)
	fx.Write(bytes.Repeat([]byte{0xff}, 16))
	fx.footer()

	file := fx.open(t)
	defer file.Close()

	identifiers, _, err := collect(t, file, nil)
	var format *FormatError
	require.ErrorAs(t, err, &format)
	require.Empty(t, identifiers)
}

func TestWalkEntriesCorruptionAfterFirstEntry(t *testing.T) {
	payload := bytes.Repeat([]byte{0xee}, 48)

	var fx customFixture
	fx.fileHeader(1)
	fx.category(2)
	fx.entry(payload)
	fx.Write(bytes.Repeat([]byte{0xff}, 16))

	file := fx.open(t)
	defer file.Close()

	identifiers, _, err := collect(t, file, []int64{48})
	require.NoError(t, err)
	require.Len(t, identifiers, 1)
}

func TestWalkEntriesTruncatedAfterFirstEntry(t *testing.T) {
	payload := bytes.Repeat([]byte{0xab}, 48)

	// the file ends right after the first entry: no second entry, no
	// footer
	var fx customFixture
	fx.fileHeader(1)
	fx.category(2)
	fx.entry(payload)

	file := fx.open(t)
	defer file.Close()

	identifiers, _, err := collect(t, file, []int64{48})
	require.NoError(t, err)
	require.Len(t, identifiers, 1)
}

func TestWalkEntriesBadFooter(t *testing.T) {
	payload := bytes.Repeat([]byte{0x55}, 16)

	var fx customFixture
	fx.fileHeader(1)
	fx.category(1)
	fx.entry(payload)
	fx.u32(0xdeadbeef)

	file := fx.open(t)
	defer file.Close()

	_, _, err := collect(t, file, []int64{16})
	var format *FormatError
	require.ErrorAs(t, err, &format)
	require.Contains(t, format.Reason, "footer signature")
}

func TestWalkEntriesIdempotent(t *testing.T) {
	payload := bytes.Repeat([]byte{0x77}, 64)

	var fx customFixture
	fx.fileHeader(1)
	fx.category(1)
	fx.entry(payload)
	fx.footer()

	file := fx.open(t)
	defer file.Close()

	firstIdentifiers, firstPayloads, err := collect(t, file, []int64{64})
	require.NoError(t, err)
	secondIdentifiers, secondPayloads, err := collect(t, file, []int64{64})
	require.NoError(t, err)

	require.Equal(t, firstIdentifiers, secondIdentifiers)
	require.Equal(t, firstPayloads, secondPayloads)
}

func TestWalkEntriesCallbackError(t *testing.T) {
	var fx customFixture
	fx.fileHeader(1)
	fx.category(1)
	fx.entry(bytes.Repeat([]byte{0x99}, 16))
	fx.footer()

	file := fx.open(t)
	defer file.Close()

	err := file.WalkEntries(func(entry *Entry) error {
		return io.ErrClosedPipe
	})
	require.Equal(t, io.ErrClosedPipe, err)
}

func TestOpenBadFileHeader(t *testing.T) {
	var fx customFixture
	fx.u32(3)
	fx.u32(0)
	fx.u16(0)
	fx.u32(0)

	file := &CustomDestinationsFile{}
	err := file.Open(bytes.NewReader(fx.Bytes()), int64(fx.Len()))
	var format *FormatError
	require.ErrorAs(t, err, &format)
}

func TestOpenBadHeaderValuesType(t *testing.T) {
	var fx customFixture
	fx.u32(2)
	fx.u32(7)
	fx.u32(0)

	file := &CustomDestinationsFile{}
	err := file.Open(bytes.NewReader(fx.Bytes()), int64(fx.Len()))
	var format *FormatError
	require.ErrorAs(t, err, &format)
}

func TestOpenTruncatedHeader(t *testing.T) {
	data := []byte{0x02, 0x00, 0x00, 0x00}

	file := &CustomDestinationsFile{}
	err := file.Open(bytes.NewReader(data), int64(len(data)))
	var truncated *TruncatedDataError
	require.ErrorAs(t, err, &truncated)
}

func TestCustomDestinationsState(t *testing.T) {
	var fx customFixture
	fx.fileHeader(0)

	file := &CustomDestinationsFile{}

	var state *StateError
	require.ErrorAs(t, file.WalkEntries(func(*Entry) error { return nil }), &state)
	require.ErrorAs(t, file.Close(), &state)

	require.NoError(t, file.Open(bytes.NewReader(fx.Bytes()), int64(fx.Len())))
	require.ErrorAs(t, file.Open(bytes.NewReader(fx.Bytes()), int64(fx.Len())), &state)
	require.NoError(t, file.Close())
	require.ErrorAs(t, file.Close(), &state)
}
