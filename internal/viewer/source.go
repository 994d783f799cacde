package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileHandle identifies a file chosen by the user.
type FileHandle struct {
	Name     string
	Path     string
	Size     int64
	MimeType string
}

// FileSource reads file contents asynchronously.
//
// ReadBytes must return promptly and call onComplete exactly once, from
// any goroutine, with either the full content or an error. When ctx is
// cancelled before the read finishes, the error is a *ReadError with
// ErrCodeCancelled.
type FileSource interface {
	ReadBytes(ctx context.Context, h FileHandle, onComplete func([]byte, error))
}

const mimeFITS = "application/fits"

// MimeType guesses the media type of a file name from its extension.
func MimeType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".fits", ".fit", ".fts":
		return mimeFITS
	}
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// HandleFromPath stats path and describes it as a FileHandle.
func HandleFromPath(path string) (FileHandle, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileHandle{}, readErr(path, err)
	}
	if info.IsDir() {
		return FileHandle{}, &ReadError{Code: ErrCodeIO, Path: path, Err: errors.New("is a directory")}
	}
	return FileHandle{
		Name:     info.Name(),
		Path:     path,
		Size:     info.Size(),
		MimeType: MimeType(info.Name()),
	}, nil
}

// readChunk bounds how much is read between cancellation checks.
const readChunk = 64 << 10

// OSFileSource reads local files on a goroutine per read.
type OSFileSource struct{}

// ReadBytes implements FileSource.
func (OSFileSource) ReadBytes(ctx context.Context, h FileHandle, onComplete func([]byte, error)) {
	go func() {
		onComplete(readFile(ctx, h.Path))
	}()
}

func readFile(ctx context.Context, path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, readErr(path, err)
	}
	defer f.Close()

	var out []byte
	buf := make([]byte, readChunk)
	for {
		if err := ctx.Err(); err != nil {
			return nil, &ReadError{Code: ErrCodeCancelled, Path: path, Err: err}
		}
		n, err := f.Read(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, &ReadError{Code: ErrCodeIO, Path: path, Err: err}
		}
	}
}

func readErr(path string, err error) *ReadError {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &ReadError{Code: ErrCodeNotFound, Path: path, Err: err}
	case errors.Is(err, fs.ErrPermission):
		return &ReadError{Code: ErrCodePermission, Path: path, Err: err}
	default:
		return &ReadError{Code: ErrCodeIO, Path: path, Err: err}
	}
}

// MemorySource serves files from memory.
//
// By default reads complete on their own goroutine. After Hold, reads stay
// pending until Release completes them, which lets callers decide the
// order in which completions arrive.
type MemorySource struct {
	mu      sync.Mutex
	files   map[string][]byte
	held    bool
	pending []pendingRead
}

type pendingRead struct {
	ctx        context.Context
	handle     FileHandle
	onComplete func([]byte, error)
}

// NewMemorySource creates an empty source.
func NewMemorySource() *MemorySource {
	return &MemorySource{files: make(map[string][]byte)}
}

// Put stores content under path and returns its handle.
func (m *MemorySource) Put(path string, content []byte) FileHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), content...)
	name := filepath.Base(path)
	return FileHandle{Name: name, Path: path, Size: int64(len(content)), MimeType: MimeType(name)}
}

// Hold makes subsequent reads wait for Release.
func (m *MemorySource) Hold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = true
}

// Pending returns the number of held reads.
func (m *MemorySource) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Release completes the oldest held read of path on the calling goroutine.
// It returns false when no read of path is pending.
func (m *MemorySource) Release(path string) bool {
	m.mu.Lock()
	idx := -1
	for i, p := range m.pending {
		if p.handle.Path == path {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return false
	}
	p := m.pending[idx]
	m.pending = append(m.pending[:idx], m.pending[idx+1:]...)
	m.mu.Unlock()

	p.onComplete(m.lookup(p.ctx, p.handle.Path))
	return true
}

// ReadBytes implements FileSource.
func (m *MemorySource) ReadBytes(ctx context.Context, h FileHandle, onComplete func([]byte, error)) {
	m.mu.Lock()
	if m.held {
		m.pending = append(m.pending, pendingRead{ctx: ctx, handle: h, onComplete: onComplete})
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	go func() {
		onComplete(m.lookup(ctx, h.Path))
	}()
}

func (m *MemorySource) lookup(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &ReadError{Code: ErrCodeCancelled, Path: path, Err: err}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[path]
	if !ok {
		return nil, &ReadError{Code: ErrCodeNotFound, Path: path, Err: fmt.Errorf("no such file")}
	}
	return append([]byte(nil), b...), nil
}
