// Package sniff classifies file contents into MIME types.
//
// A [Sniffer] hands out [Session] values, one per classification worker.
// Sessions are not safe for concurrent use. The default implementation is
// backed by github.com/gabriel-vasile/mimetype, which inspects the leading
// bytes of a file the same way libmagic does.
package sniff
