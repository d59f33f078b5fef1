package env

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"os"
	"strings"

	"vim3-go/errcode"
)

// DefaultSize is CONFIG_ENV_SIZE for the board.
const DefaultSize = 0x10000

var (
	ErrCRC     = &errcode.E{C: errcode.InvalidArgument, Op: "env import", Msg: "bad CRC"}
	ErrTooBig  = &errcode.E{C: errcode.IO, Op: "env export", Msg: "environment does not fit"}
	ErrTooTiny = &errcode.E{C: errcode.InvalidArgument, Op: "env import", Msg: "image smaller than header"}
)

// Encode lays s out as a non-redundant U-Boot env image of size bytes:
// CRC32 (little endian) over the data area, then "key=value\0" entries
// sorted by key, an extra "\0", and zero padding.
func Encode(s *Store, size int) ([]byte, error) {
	if size <= crc32.Size+1 {
		return nil, ErrTooBig
	}
	img := make([]byte, size)
	data := img[crc32.Size:]
	off := 0
	for _, k := range s.Keys() {
		v, _ := s.Get(k)
		entry := k + "=" + v
		// entry, its NUL and the list terminator must fit
		if off+len(entry)+2 > len(data) {
			return nil, ErrTooBig
		}
		off += copy(data[off:], entry)
		data[off] = 0
		off++
	}
	binary.LittleEndian.PutUint32(img[:crc32.Size], crc32.ChecksumIEEE(data))
	return img, nil
}

// Decode parses an image produced by Encode (or by U-Boot saveenv).
func Decode(img []byte) (*Store, error) {
	if len(img) <= crc32.Size {
		return nil, ErrTooTiny
	}
	data := img[crc32.Size:]
	if binary.LittleEndian.Uint32(img[:crc32.Size]) != crc32.ChecksumIEEE(data) {
		return nil, ErrCRC
	}
	s := NewStore()
	for len(data) > 0 && data[0] != 0 {
		end := bytes.IndexByte(data, 0)
		if end < 0 {
			end = len(data)
		}
		entry := string(data[:end])
		if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
			s.vars[k] = v
		}
		if end == len(data) {
			break
		}
		data = data[end+1:]
	}
	return s, nil
}

// Load reads an image from path. A missing file yields an empty store, the
// same as U-Boot falling back to the default environment.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(b)
}

// Save writes s to path as an image of size bytes.
func Save(path string, s *Store, size int) error {
	img, err := Encode(s, size)
	if err != nil {
		return err
	}
	return os.WriteFile(path, img, 0o644)
}
