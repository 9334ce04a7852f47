package sniff

import (
	"errors"

	"github.com/gabriel-vasile/mimetype"

	"thumbq/internal/mediatypes"
)

// ErrEmpty is returned when a session is asked to classify an empty buffer.
var ErrEmpty = errors.New("sniff: empty buffer")

// Sniffer opens classification sessions.
type Sniffer interface {
	Open() (Session, error)
}

// Session classifies byte buffers. A session is owned by a single worker.
type Session interface {
	// Buffer returns the normalized MIME type of b.
	Buffer(b []byte) (string, error)
	Close() error
}

// New returns the default content sniffer.
func New() Sniffer {
	return magic{}
}

type magic struct{}

func (magic) Open() (Session, error) {
	return &magicSession{}, nil
}

type magicSession struct {
	closed bool
}

func (s *magicSession) Buffer(b []byte) (string, error) {
	if s.closed {
		return "", errors.New("sniff: session closed")
	}
	if len(b) == 0 {
		return "", ErrEmpty
	}
	return mediatypes.Normalize(mimetype.Detect(b).String()), nil
}

func (s *magicSession) Close() error {
	s.closed = true
	return nil
}
