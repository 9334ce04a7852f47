// Package mediatypes provides the media-type vocabulary shared by the scanner,
// the thumbnailer client and the CLI.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles.
//
// # Allow lists
//
// The thumbnail service advertises which media types it can render. An
// AllowList holds that set, normalised the same way sniffed types are, and
// is read-only once built:
//
//	allow := mediatypes.NewAllowList(supported)
//	if allow.Contains("image/png") {
//	    // queue it
//	}
//
// # Categories
//
// GetFileType buckets a media type into a coarse FileType (image, video,
// audio, document, other). The scanner uses it to label metrics without
// exploding label cardinality:
//
//	mediatypes.GetFileType("video/mp4") // FileTypeVideo
package mediatypes
