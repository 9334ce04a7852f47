// Package pngmeta reads the freshness metadata embedded in cached thumbnail
// artifacts.
//
// Thumbnail generators store the modification time of the source file in a
// PNG tEXt chunk with the keyword "Thumb::MTime" and a "<seconds>.<frac>"
// value. Only the first kilobyte of an artifact is ever read, so parsing
// works on a prefix: chunks that extend past the end of the prefix are not
// faulted in, and the walk stops as soon as fewer bytes than a chunk header
// remain.
package pngmeta
