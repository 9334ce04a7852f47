package sniff

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func encode(t *testing.T, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(4, 4, color.NRGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestSessionBuffer(t *testing.T) {
	s, err := New().Open()
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", encode(t, imaging.PNG), "image/png"},
		{"jpeg", encode(t, imaging.JPEG), "image/jpeg"},
		{"gif", encode(t, imaging.GIF), "image/gif"},
		{"plain text", []byte("hello, thumbnails\n"), "text/plain"},
		{"pdf", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n"), "application/pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Buffer(tt.data)
			if err != nil {
				t.Fatalf("Buffer failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Buffer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionBufferEmpty(t *testing.T) {
	s, _ := New().Open()
	defer s.Close()

	if _, err := s.Buffer(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestSessionBufferLongInput(t *testing.T) {
	s, _ := New().Open()
	defer s.Close()

	data := append(encode(t, imaging.PNG), make([]byte, 64*1024)...)
	got, err := s.Buffer(data)
	if err != nil {
		t.Fatalf("Buffer failed: %v", err)
	}
	if got != "image/png" {
		t.Errorf("Buffer() = %q, want image/png", got)
	}
}

func TestSessionClosed(t *testing.T) {
	s, _ := New().Open()
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := s.Buffer([]byte("x")); err == nil {
		t.Error("expected error from closed session")
	}
}
