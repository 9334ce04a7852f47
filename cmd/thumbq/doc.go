// Command thumbq queues missing or outdated thumbnails with the desktop
// thumbnailer service.
//
// Every FILE is checked against the freedesktop.org thumbnail cache. Files
// whose cached thumbnail is missing or older than the file are classified
// by content, filtered by the MIME types the thumbnailer supports, and
// submitted in a single Queue request.
//
// Usage:
//
//	thumbq [flags] [FILE...]
//
// With no FILE arguments, paths are read from standard input, one per line.
//
// Flags:
//
//	-f, --flavor NAME       thumbnail flavor (default: normal)
//	-s, --scheduler NAME    thumbnailer scheduler (default: default)
//	-u, --unchecked         skip the cache check and classify every file
//	-n, --dry-run           print "uri<TAB>mime" instead of queueing
//	-w, --wait              print each thumbnail path as it becomes ready
//	-l, --listen            print every thumbnail the service reports ready
//	    --list-flavors      list supported flavors
//	    --list-schedulers   list supported schedulers
//	    --list-mime         list supported MIME types
//	    --engine NAME       I/O engine: uring or blocking (default: uring)
//	    --workers N         classification workers (default: automatic)
//	    --metrics-file PATH write Prometheus metrics to PATH on exit
//	-v, --verbose           enable debug logging
//	    --version           print version information
//
// Environment:
//
//	THUMBQ_CONFIG, THUMBQ_FLAVOR, THUMBQ_SCHEDULER, THUMBQ_ENGINE,
//	THUMBQ_WORKERS, THUMBQ_METRICS_FILE, THUMBQ_RPC_TIMEOUT,
//	XDG_CACHE_HOME, XDG_CONFIG_HOME, LOG_LEVEL, DEBUG
//
// Exit status is 0 on success and 1 on any error, including a first
// standard-input path that does not exist.
package main
