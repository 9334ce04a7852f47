package uri

import (
	"crypto/md5" //nolint:gosec // MD5 used for cache key generation, not security
	"encoding/hex"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// FilePrefix is the scheme prefix of every URI produced by File.
const FilePrefix = "file://"

// ArtifactExt is the suffix of cached artifact file names.
const ArtifactExt = ".png"

const upperhex = "0123456789ABCDEF"

// shouldEscape reports whether b is percent-encoded. 0x10 is left alone to
// stay key-compatible with existing caches.
func shouldEscape(b byte) bool {
	switch {
	case b < 0x20:
		return b != 0x10
	case b == ' ', b == '"', b == '#', b == '%', b == '<', b == '>':
		return true
	}
	return false
}

// Escape percent-encodes path using the thumbnail cache convention.
func Escape(path string) string {
	n := 0
	for i := 0; i < len(path); i++ {
		if shouldEscape(path[i]) {
			n++
		}
	}
	if n == 0 {
		return path
	}

	var sb strings.Builder
	sb.Grow(len(path) + 2*n)
	for i := 0; i < len(path); i++ {
		c := path[i]
		if shouldEscape(c) {
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&0x0F])
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// File returns the file:// URI for an absolute path. It returns false when
// the path is not valid UTF-8, since such paths cannot be represented in
// the text-based generation protocol.
func File(path string) (string, bool) {
	if !utf8.ValidString(path) {
		return "", false
	}
	return FilePrefix + Escape(path), true
}

// FromPath makes p absolute (lexically, without resolving symlinks) and
// returns its URI.
func FromPath(p string) (string, bool) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", false
	}
	return File(abs)
}

// ArtifactName returns the cache file name for uri: the lowercase hex MD5
// digest of the complete URI string followed by ".png".
func ArtifactName(uri string) string {
	sum := md5.Sum([]byte(uri)) //nolint:gosec // MD5 used for cache key generation, not security
	return hex.EncodeToString(sum[:]) + ArtifactExt
}

// ArtifactPath joins dir with the artifact name for uri.
func ArtifactPath(dir, uri string) string {
	return filepath.Join(dir, ArtifactName(uri))
}

// Path converts a file:// URI back to a filesystem path, decoding any
// percent escapes. It returns false for URIs with another scheme.
func Path(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, FilePrefix)
	if !ok {
		return "", false
	}
	if !strings.Contains(rest, "%") {
		return rest, true
	}

	buf := make([]byte, 0, len(rest))
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c == '%' && i+2 < len(rest) {
			hi, okHi := unhex(rest[i+1])
			lo, okLo := unhex(rest[i+2])
			if okHi && okLo {
				buf = append(buf, hi<<4|lo)
				i += 2
				continue
			}
		}
		buf = append(buf, c)
	}
	return string(buf), true
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
