// Package uri derives the identifiers used by the freedesktop thumbnail
// cache: the file:// URI of a local path and the content-addressed name of
// the cached artifact for that URI.
//
// Escaping is deliberately minimal. Only control bytes, space and the
// characters " # % < > are percent-encoded; everything else, including
// multi-byte UTF-8 sequences, is copied verbatim. This is the convention
// thumbnail generators use when they hash the URI, so a different escaping
// would produce a different cache key.
//
// Example:
//
//	u, ok := uri.File("/home/user/pictures/cats in space/69%.jpg")
//	// u == "file:///home/user/pictures/cats%20in%20space/69%25.jpg"
//	name := uri.ArtifactName(u) // "<md5 hex>.png"
package uri
