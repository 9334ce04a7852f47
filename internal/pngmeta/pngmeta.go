package pngmeta

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"strconv"
	"strings"
)

const (
	// MTimeKey is the tEXt keyword holding the source modification time.
	MTimeKey = "Thumb::MTime"

	// PrefixSize is how many leading artifact bytes freshness checks need.
	PrefixSize = 1024

	signatureLen = 8
	headerLen    = 8 // length + type
	crcLen       = 4
)

var signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ErrNotPNG is returned by AppendText for input without a PNG signature
// and IHDR chunk.
var ErrNotPNG = errors.New("pngmeta: not a PNG image")

// Text returns the value of the first tEXt chunk in b whose keyword equals
// key. The signature bytes are skipped without being validated.
func Text(b []byte, key string) (string, bool) {
	if len(b) < signatureLen+headerLen {
		return "", false
	}
	b = b[signatureLen:]

	for len(b) >= headerLen {
		length := uint64(binary.BigEndian.Uint32(b[:4]))

		if string(b[4:8]) == "tEXt" {
			end := headerLen + length
			if end > uint64(len(b)) {
				end = uint64(len(b))
			}
			keyword, value, _ := bytes.Cut(b[headerLen:end], []byte{0})
			if string(keyword) == key {
				if i := bytes.IndexByte(value, 0); i >= 0 {
					value = value[:i]
				}
				return string(value), true
			}
		}

		next := headerLen + length + crcLen
		if next >= uint64(len(b)) {
			break
		}
		b = b[next:]
	}

	return "", false
}

// MTime returns the raw "<seconds>.<frac>" modification time recorded in
// the artifact prefix b.
func MTime(b []byte) (string, bool) {
	return Text(b, MTimeKey)
}

// Seconds parses the integer-seconds portion of a recorded modification
// time. The fractional part is ignored.
func Seconds(v string) (int64, bool) {
	secs, _, _ := strings.Cut(v, ".")
	n, err := strconv.ParseUint(secs, 10, 63)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

// IsFresh reports whether the artifact prefix b records a modification time
// whose whole seconds equal sourceMTime. Missing or unparsable metadata is
// never fresh.
func IsFresh(b []byte, sourceMTime int64) bool {
	v, ok := MTime(b)
	if !ok {
		return false
	}
	secs, ok := Seconds(v)
	return ok && secs == sourceMTime
}

// AppendText returns a copy of the PNG image img with a tEXt chunk holding
// keyword and text inserted directly after the IHDR chunk, where readers of
// a short prefix will find it.
func AppendText(img []byte, keyword, text string) ([]byte, error) {
	if len(img) < signatureLen+headerLen || !bytes.Equal(img[:signatureLen], signature) {
		return nil, ErrNotPNG
	}
	if string(img[signatureLen+4:signatureLen+8]) != "IHDR" {
		return nil, ErrNotPNG
	}
	ihdrLen := int(binary.BigEndian.Uint32(img[signatureLen : signatureLen+4]))
	split := signatureLen + headerLen + ihdrLen + crcLen
	if split > len(img) {
		return nil, ErrNotPNG
	}

	data := make([]byte, 0, len(keyword)+1+len(text))
	data = append(data, keyword...)
	data = append(data, 0)
	data = append(data, text...)

	out := make([]byte, 0, len(img)+headerLen+len(data)+crcLen)
	out = append(out, img[:split]...)
	out = appendChunk(out, "tEXt", data)
	out = append(out, img[split:]...)
	return out, nil
}

func appendChunk(dst []byte, typ string, data []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))
	start := len(dst)
	dst = append(dst, typ...)
	dst = append(dst, data...)
	return binary.BigEndian.AppendUint32(dst, crc32.ChecksumIEEE(dst[start:]))
}
