package lnk

import (
	"encoding/binary"
	"io"
)

// extra data block signatures
const (
	signatureEnvironment     = 0xa0000001
	signatureDarwin          = 0xa0000006
	signatureIconEnvironment = 0xa0000007
	signatureShim            = 0xa0000008
	signaturePropertyStore   = 0xa0000009
)

// Environment holds the target path of a shortcut that resolves through
// environment variables.
type Environment struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// Darwin holds the Windows Installer identifiers of an advertised
// shortcut.
type Darwin struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// IconEnvironment holds an icon location that resolves through
// environment variables.
type IconEnvironment struct {
	ANSI    string `json:"ansi,omitempty"`
	Unicode string `json:"unicode,omitempty"`
}

// Shim names the compatibility layer the target runs under.
type Shim struct {
	LayerName string `json:"layerName,omitempty"`
}

// readExtraBlocks consumes the extra data blocks at the end of a
// shortcut record, including the terminal block. Unrecognized block
// signatures are skipped; a malformed known block fails the parse.
func readExtraBlocks(r io.Reader, info *Info) error {
	for {
		var sizeBuf [4]byte
		if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
			// A record ending without a terminal block is accepted; the
			// blocks read so far stand.
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return err
		}
		size := binary.LittleEndian.Uint32(sizeBuf[:])
		if size < 8 {
			// terminal block
			return nil
		}

		data := make([]byte, size)
		copy(data, sizeBuf[:])
		if _, err := io.ReadFull(r, data[4:]); err != nil {
			return err
		}

		var err error
		switch binary.LittleEndian.Uint32(data[4:8]) {
		case signatureEnvironment:
			info.Environment, err = parseExtraEnvironment(size, data)
		case signatureDarwin:
			info.Darwin, err = parseExtraDarwin(size, data)
		case signatureIconEnvironment:
			info.IconEnvironment, err = parseExtraIconEnvironment(size, data)
		case signatureShim:
			info.Shim, err = parseExtraShim(size, data)
		case signaturePropertyStore:
			var keys []PropertyKey
			keys, err = parsePropertyStore(data[8:])
			info.PropertyKeys = append(info.PropertyKeys, keys...)
		}
		if err != nil {
			return err
		}
	}
}
