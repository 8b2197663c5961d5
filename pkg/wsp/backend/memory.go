package backend

import (
	"sync"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/wsperr"
)

// Registry is the process-wide name -> buffer map spec.md section 4.6
// describes as a linked list with head/tail pointers. A Go map gives
// the same name -> buffer lookup semantics without hand-rolled list
// bookkeeping; what the spec actually requires (exact-name
// insert-or-replace, absence is an error) is preserved exactly.
//
// Per spec.md section 9's design note, Registry is a plain collaborator
// rather than file-scope global state, so tests get a fresh Registry
// and multiple engines can run without sharing memory databases. Use
// DefaultRegistry for the conventional single-process-wide instance.
type Registry struct {
	mu      sync.Mutex
	entries map[string][]byte
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string][]byte)}
}

// DefaultRegistry is the conventional process-wide registry used by
// NewMemory when no explicit Registry is supplied.
var DefaultRegistry = NewRegistry()

func (r *Registry) get(name string) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.entries[name]

	return buf, ok
}

// put inserts or replaces the entry for name. Replacing an entry drops
// the registry's reference to the prior buffer, which the garbage
// collector reclaims once no backend Instance still holds it open.
func (r *Registry) put(name string, buf []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[name] = buf
}

// Memory is the process-resident storage backend: Create and Open work
// against named in-memory buffers owned by a Registry rather than the
// filesystem. Reads return zero-copy views into the buffer (ManualBuf is
// false). Used primarily by tests to exercise the full read/write/
// propagate pipeline without touching disk (spec.md section 4.6).
type Memory struct {
	registry *Registry
}

// NewMemory returns a Memory backend backed by registry. Pass
// DefaultRegistry for the conventional process-wide instance, or a
// fresh *Registry to isolate a test.
func NewMemory(registry *Registry) *Memory {
	return &Memory{registry: registry}
}

func (b *Memory) Open(path string, flags Flags) (Instance, error) {
	if flags&(Read|Write) == 0 {
		return nil, wsperr.New(wsperr.IoMode, "open", nil)
	}

	buf, ok := b.registry.get(path)
	if !ok {
		return nil, wsperr.New(wsperr.Io, "open", nil)
	}

	return &memoryInstance{buf: buf}, nil
}

func (b *Memory) Create(path string, totalSize int64, archives []codec.Archive, meta codec.Metadata) error {
	// The whole buffer is computed before it's inserted into the
	// registry, so a Create that fails midway (e.g. a bad archive list
	// caught upstream) never leaves a partially-written entry visible
	// under this name — spec.md section 4.5.1's atomicity guarantee for
	// the memory backend.
	buf := make([]byte, totalSize)
	copy(buf, headerAndDescriptors(archives, meta))

	b.registry.put(path, buf)

	return nil
}

type memoryInstance struct {
	buf []byte
}

func (i *memoryInstance) Read(offset int64, size int) ([]byte, error) {
	if offset < 0 || offset+int64(size) > int64(len(i.buf)) {
		return nil, wsperr.New(wsperr.IoOffset, "read", nil)
	}

	return i.buf[offset : offset+int64(size) : offset+int64(size)], nil
}

func (i *memoryInstance) ReadInto(dst []byte, offset int64) error {
	if offset < 0 || offset+int64(len(dst)) > int64(len(i.buf)) {
		return wsperr.New(wsperr.IoOffset, "read", nil)
	}

	copy(dst, i.buf[offset:offset+int64(len(dst))])

	return nil
}

func (i *memoryInstance) Write(src []byte, offset int64) error {
	if offset < 0 || offset+int64(len(src)) > int64(len(i.buf)) {
		return wsperr.New(wsperr.IoOffset, "write", nil)
	}

	copy(i.buf[offset:offset+int64(len(src))], src)

	return nil
}

func (i *memoryInstance) ManualBuf() bool { return false }

func (i *memoryInstance) Close() error { return nil }

var _ Backend = (*Memory)(nil)
