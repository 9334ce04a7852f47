package scan

import "golang.org/x/sys/unix"

// Stage identifies the pending operation of an in-flight task.
type Stage int

const (
	StageStatSource Stage = iota
	StageOpenArtifact
	StageReadArtifact
	StageOpenSource
	StageReadSource
)

func (s Stage) String() string {
	switch s {
	case StageStatSource:
		return "StatSource"
	case StageOpenArtifact:
		return "OpenArtifact"
	case StageReadArtifact:
		return "ReadArtifact"
	case StageOpenSource:
		return "OpenSource"
	case StageReadSource:
		return "ReadSource"
	default:
		return "Unknown"
	}
}

// stage holds the data of one pending operation. A new value is built at
// every transition; nothing is carried over except the source facts.
type stage interface {
	Stage() Stage
}

// source holds what StatSource learned about the input path.
type source struct {
	uri   string
	mtime int64
}

type statSource struct {
	stx unix.Statx_t
}

type openArtifact struct {
	src  source
	path []byte
}

type readArtifact struct {
	src source
	fd  int
	buf []byte
}

type openSource struct {
	src source
}

type readSource struct {
	src source
	fd  int
	buf []byte
}

func (*statSource) Stage() Stage   { return StageStatSource }
func (*openArtifact) Stage() Stage { return StageOpenArtifact }
func (*readArtifact) Stage() Stage { return StageReadArtifact }
func (*openSource) Stage() Stage   { return StageOpenSource }
func (*readSource) Stage() Stage   { return StageReadSource }

// task is one input path while it is owned by the driver.
type task struct {
	name  string
	cpath []byte // NUL-terminated name
	stage stage
}

func newTask(name string) *task {
	return &task{
		name:  name,
		cpath: cstring(name),
		stage: &statSource{},
	}
}

func cstring(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// isRegular reports whether a statx mode describes a regular file.
func isRegular(mode uint16) bool {
	return uint32(mode)&unix.S_IFMT == unix.S_IFREG
}
