package mediatypes

import (
	"sort"
	"strings"
)

// FileType is a coarse category of a media type.
type FileType string

const (
	// FileTypeImage represents image/* media types.
	FileTypeImage FileType = "image"
	// FileTypeVideo represents video/* media types.
	FileTypeVideo FileType = "video"
	// FileTypeAudio represents audio/* media types.
	FileTypeAudio FileType = "audio"
	// FileTypeDocument represents text and office-style documents.
	FileTypeDocument FileType = "document"
	// FileTypeOther represents anything else.
	FileTypeOther FileType = "other"
)

// AllFileTypes lists every category, in label order.
var AllFileTypes = []FileType{FileTypeImage, FileTypeVideo, FileTypeAudio, FileTypeDocument, FileTypeOther}

// Normalize lower-cases a media type and strips parameters, so that
// "Text/Plain; charset=utf-8" becomes "text/plain".
func Normalize(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// GetFileType returns the category of a media type.
func GetFileType(mime string) FileType {
	mime = Normalize(mime)
	major, _, _ := strings.Cut(mime, "/")
	switch major {
	case "image":
		return FileTypeImage
	case "video":
		return FileTypeVideo
	case "audio":
		return FileTypeAudio
	case "text":
		return FileTypeDocument
	}
	switch mime {
	case "application/pdf",
		"application/epub+zip",
		"application/postscript",
		"application/msword",
		"application/vnd.oasis.opendocument.text",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return FileTypeDocument
	}
	return FileTypeOther
}

// AllowList is the set of media types the thumbnail service accepts.
type AllowList struct {
	types map[string]struct{}
}

// NewAllowList builds an AllowList from a list of media types. Empty
// entries are ignored and duplicates collapse.
func NewAllowList(types []string) AllowList {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		if t = Normalize(t); t != "" {
			set[t] = struct{}{}
		}
	}
	return AllowList{types: set}
}

// Contains reports whether mime is allowed.
func (a AllowList) Contains(mime string) bool {
	_, ok := a.types[Normalize(mime)]
	return ok
}

// Len returns the number of distinct allowed types.
func (a AllowList) Len() int {
	return len(a.types)
}

// Sorted returns the allowed types in lexical order.
func (a AllowList) Sorted() []string {
	out := make([]string, 0, len(a.types))
	for t := range a.types {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
