// Package thumbnailer is a client for the freedesktop.org thumbnail
// management D-Bus interface (org.freedesktop.thumbnails.Thumbnailer1),
// served by tumblerd and compatible daemons.
//
// Every method call is bounded by the client's timeout. The supported MIME
// types can be requested asynchronously with [Client.RequestSupported] so
// the reply overlaps with other work:
//
//	req := client.RequestSupported(ctx)
//	// ... scan ...
//	allow, err := req.Wait()
//
// Ready and Finished signals for a queued request are consumed through a
// [Subscription], which must be created before calling [Client.Queue] so
// that no early signal is missed.
package thumbnailer
