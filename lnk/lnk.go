package lnk

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/andrewstucki/jumplist/internal"
)

const headerSize = 76

// linkClassIdentifier is the CLSID every shortcut record starts with.
var linkClassIdentifier = []byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xc0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

// link flags
const (
	hasLinkTargetIDList = 1 << iota
	hasLinkInfo
	hasName
	hasRelativePath
	hasWorkingDir
	hasArguments
	hasIconLocation
	isUnicode
)

// link info flags
const volumeIDAndLocalBasePath = 0x00000001

// Info contains the decoded fields of a Windows shortcut (LNK) record.
type Info struct {
	CreationTime    time.Time        `json:"creationTime"`
	AccessTime      time.Time        `json:"accessTime"`
	WriteTime       time.Time        `json:"writeTime"`
	FileSize        uint32           `json:"fileSize"`
	IconIndex       int32            `json:"iconIndex"`
	ShowCommand     uint32           `json:"showCommand"`
	Description     string           `json:"description,omitempty"`
	RelativePath    string           `json:"relativePath,omitempty"`
	WorkingDir      string           `json:"workingDir,omitempty"`
	Arguments       string           `json:"arguments,omitempty"`
	IconLocation    string           `json:"iconLocation,omitempty"`
	LocalBasePath   string           `json:"localBasePath,omitempty"`
	Environment     *Environment     `json:"environment,omitempty"`
	Darwin          *Darwin          `json:"darwin,omitempty"`
	IconEnvironment *IconEnvironment `json:"iconEnvironment,omitempty"`
	Shim            *Shim            `json:"shim,omitempty"`
	PropertyKeys    []PropertyKey    `json:"propertyKeys,omitempty"`
}

// Parse decodes a shortcut record from r, consuming exactly the bytes
// the record occupies. Containers that frame shortcut records without
// declaring their length rely on that: the reader's position after Parse
// marks the end of the record.
func Parse(r io.Reader) (*Info, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	if binary.LittleEndian.Uint32(header[0:4]) != headerSize {
		return nil, errors.New("invalid shortcut header size")
	}
	if !bytes.Equal(header[4:20], linkClassIdentifier) {
		return nil, errors.New("invalid shortcut class identifier")
	}

	flags := binary.LittleEndian.Uint32(header[20:24])
	info := &Info{
		CreationTime: filetimeToTime(binary.LittleEndian.Uint64(header[28:36])),
		AccessTime:   filetimeToTime(binary.LittleEndian.Uint64(header[36:44])),
		WriteTime:    filetimeToTime(binary.LittleEndian.Uint64(header[44:52])),
		FileSize:     binary.LittleEndian.Uint32(header[52:56]),
		IconIndex:    int32(binary.LittleEndian.Uint32(header[56:60])),
		ShowCommand:  binary.LittleEndian.Uint32(header[60:64]),
	}

	if flags&hasLinkTargetIDList != 0 {
		var sizeBuf [2]byte
		if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
			return nil, err
		}
		data := make([]byte, binary.LittleEndian.Uint16(sizeBuf[:]))
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		info.PropertyKeys = append(info.PropertyKeys, scanIDListPropertyKeys(data)...)
	}

	if flags&hasLinkInfo != 0 {
		var sizeBuf [4]byte
		if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
			return nil, err
		}
		size := binary.LittleEndian.Uint32(sizeBuf[:])
		if size < 4 {
			return nil, errors.New("invalid link info size")
		}
		data := make([]byte, size)
		copy(data, sizeBuf[:])
		if _, err := io.ReadFull(r, data[4:]); err != nil {
			return nil, err
		}
		parseLinkInfo(data, info)
	}

	unicode := flags&isUnicode != 0
	stringData := []struct {
		flag  uint32
		field *string
	}{
		{hasName, &info.Description},
		{hasRelativePath, &info.RelativePath},
		{hasWorkingDir, &info.WorkingDir},
		{hasArguments, &info.Arguments},
		{hasIconLocation, &info.IconLocation},
	}
	for _, s := range stringData {
		if flags&s.flag == 0 {
			continue
		}
		value, err := readStringData(r, unicode)
		if err != nil {
			return nil, err
		}
		*s.field = value
	}

	if err := readExtraBlocks(r, info); err != nil {
		return nil, err
	}
	return info, nil
}

func readStringData(r io.Reader, unicode bool) (string, error) {
	var countBuf [2]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return "", err
	}
	count := int(binary.LittleEndian.Uint16(countBuf[:]))
	if unicode {
		count *= 2
	}
	data := make([]byte, count)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	if unicode {
		return internal.DecodeUnicode(data), nil
	}
	return string(data), nil
}

// parseLinkInfo pulls the local base path out of a link info block.
// Offsets outside the block are ignored rather than rejected; the block
// is advisory for our purposes.
func parseLinkInfo(data []byte, info *Info) {
	if len(data) < 28 {
		return
	}
	flags := binary.LittleEndian.Uint32(data[8:12])
	if flags&volumeIDAndLocalBasePath != 0 {
		offset := int(binary.LittleEndian.Uint32(data[16:20]))
		if offset > 0 && offset < len(data) {
			info.LocalBasePath = internal.ReadString(data, offset)
		}
	}
}

func filetimeToTime(value uint64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	// FILETIME counts 100ns intervals since 1601-01-01.
	const epochDelta = 116444736000000000
	nanoseconds := (int64(value) - epochDelta) * 100
	return time.Unix(0, nanoseconds).UTC()
}
