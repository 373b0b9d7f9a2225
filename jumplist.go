package jumplist

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"io"

	sha256 "github.com/minio/sha256-simd"

	"github.com/h2non/filetype"

	"github.com/andrewstucki/jumplist/lnk"
)

// size for detection, the compound file signature sits in the first
// sector
const headerSize = 8192

var addedTypes = map[string]func([]byte) bool{
	"application/x-ole-storage": olecfMatcher,
}

func init() {
	for mimeType, matcher := range addedTypes {
		filetype.AddMatcher(filetype.NewType(mimeType, mimeType), matcher)
	}
}

func olecfMatcher(buf []byte) bool {
	return len(buf) > 7 &&
		buf[0] == 0xd0 && buf[1] == 0xcf && buf[2] == 0x11 && buf[3] == 0xe0 &&
		buf[4] == 0xa1 && buf[5] == 0xb1 && buf[6] == 0x1a && buf[7] == 0xe1
}

// Format identifies which of the two jump list container formats a byte
// stream holds.
type Format int

const (
	FormatUnknown Format = iota
	FormatAutomaticDestinations
	FormatCustomDestinations
)

func (f Format) String() string {
	switch f {
	case FormatAutomaticDestinations:
		return "automatic-destinations"
	case FormatCustomDestinations:
		return "custom-destinations"
	}
	return "unknown"
}

// Reader is the interface that must be satisfied for parsing a stream of
// data.
type Reader interface {
	io.ReadSeeker
	io.ReaderAt
}

// DetectFormat classifies a byte stream as one of the two jump list
// container formats. Automatic destinations containers are recognized by
// the compound file signature at the start; custom destinations files
// have no header magic and are recognized by the category footer
// signature at the very end of the file.
func DetectFormat(r Reader, size int64) (Format, error) {
	header := make([]byte, headerSize)
	n, err := r.Read(header)
	if err != nil && err != io.EOF {
		return FormatUnknown, err
	}
	// reset header read
	if _, err := r.Seek(0, 0); err != nil {
		return FormatUnknown, err
	}

	kind, err := filetype.Match(header[:n])
	if err != nil {
		return FormatUnknown, err
	}
	if kind.MIME.Value == "application/x-ole-storage" {
		return FormatAutomaticDestinations, nil
	}

	if size >= 4 {
		footer := make([]byte, 4)
		if _, err := r.ReadAt(footer, size-4); err != nil {
			return FormatUnknown, err
		}
		if binary.LittleEndian.Uint32(footer) == categoryFooterSignature {
			return FormatCustomDestinations, nil
		}
	}
	return FormatUnknown, nil
}

// EntryInfo describes one decoded jump list entry.
type EntryInfo struct {
	Identifier string    `json:"identifier"`
	Size       int64     `json:"size"`
	MD5        string    `json:"md5"`
	SHA1       string    `json:"sha1"`
	SHA256     string    `json:"sha256"`
	LNK        *lnk.Info `json:"lnk,omitempty"`
}

// Info contains the decoded contents of a jump list container.
type Info struct {
	Format  string      `json:"format"`
	Entries []EntryInfo `json:"entries,omitempty"`
}

// Parse determines the container format for the data and decodes every
// embedded shortcut record it frames.
func Parse(r Reader, size int64) (*Info, error) {
	format, err := DetectFormat(r, size)
	if err != nil {
		return nil, err
	}

	info := &Info{Format: format.String()}

	switch format {
	case FormatAutomaticDestinations:
		container := &AutomaticDestinationsFile{}
		if err := container.Open(r); err != nil {
			return nil, err
		}
		defer container.Close()

		err = container.WalkEntries(func(entry *Entry) error {
			info.Entries = append(info.Entries, decodeEntry(entry, entry.Payload.Size()))
			return nil
		})
		if err != nil {
			return nil, err
		}

	case FormatCustomDestinations:
		container := &CustomDestinationsFile{}
		if err := container.Open(r, size); err != nil {
			return nil, err
		}
		defer container.Close()

		err = container.WalkEntries(func(entry *Entry) error {
			decoded := decodeEntry(entry, 0)
			// The payload window is an upper bound; the decoder's final
			// position is the entry's true size.
			decoded.Size = entry.Payload.Offset()
			decoded = hashEntry(decoded, entry.Payload)
			info.Entries = append(info.Entries, decoded)
			return nil
		})
		if err != nil {
			return nil, err
		}

	default:
		return nil, &FormatError{Reason: "not a jump list container"}
	}

	return info, nil
}

func decodeEntry(entry *Entry, size int64) EntryInfo {
	decoded := EntryInfo{
		Identifier: entry.Identifier,
		Size:       size,
	}

	lnkInfo, err := lnk.Parse(entry.Payload)
	if err != nil {
		logger.Warn().
			Str("entry", entry.Identifier).
			Err(err).
			Msg("unable to decode shortcut record")
	} else {
		decoded.LNK = lnkInfo
	}

	if size > 0 {
		decoded = hashEntry(decoded, entry.Payload)
	}
	return decoded
}

func hashEntry(decoded EntryInfo, payload *BoundedReader) EntryInfo {
	if decoded.Size <= 0 {
		return decoded
	}

	md5hash := md5.New()
	sha1hash := sha1.New()
	sha256hash := sha256.New()
	hasher := io.MultiWriter(md5hash, sha1hash, sha256hash)
	if _, err := io.Copy(hasher, io.NewSectionReader(payload, 0, decoded.Size)); err != nil {
		return decoded
	}

	decoded.MD5 = hex.EncodeToString(md5hash.Sum(nil))
	decoded.SHA1 = hex.EncodeToString(sha1hash.Sum(nil))
	decoded.SHA256 = hex.EncodeToString(sha256hash.Sum(nil))
	return decoded
}
