// Package backend implements the pluggable, byte-addressable storage
// layer behind a whisper database (spec.md section 4.2): File (unbuffered
// os.File I/O with explicit seek), Mmap (shared memory mapping), and
// Memory (process-resident, name-keyed buffers).
//
// The three implementations mirror pkg/fs's Real/Chaos/Crash split in
// the teacher repo — one interface, several backends selected by a
// small enum — generalized from "filesystem operations" to "the three
// ways spec.md lets a whisper database touch bytes".
package backend

import (
	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

// Flags is the open-mode bitset from spec.md section 6.
type Flags uint8

const (
	Read Flags = 1 << iota
	Write
)

// Mapping selects which backend realization to use.
type Mapping uint8

const (
	FileMapping Mapping = iota + 1
	MmapMapping
	MemoryMapping
)

// Instance is one open backend handle: a byte-addressable region plus
// the read/write operations spec.md section 4.2 requires of it.
type Instance interface {
	// Read returns a view of size bytes at offset. The view may be a
	// zero-copy borrow (Mmap, Memory) or an owned, freshly allocated
	// buffer (File); ManualBuf reports which. The returned slice is
	// only valid until the next mutation on this Instance when
	// ManualBuf is false.
	Read(offset int64, size int) ([]byte, error)

	// ReadInto always copies len(dst) bytes at offset into dst.
	ReadInto(dst []byte, offset int64) error

	// Write overwrites len(src) bytes at offset with src's contents.
	Write(src []byte, offset int64) error

	// ManualBuf reports whether Read returns an owned buffer the
	// caller is responsible for (conceptually) releasing, as opposed
	// to a borrowed view. File backends are true; Mmap and Memory are
	// false (spec.md section 4.2/5).
	ManualBuf() bool

	// Close releases the instance.
	Close() error
}

// Backend constructs and destroys Instances for one storage realization.
type Backend interface {
	// Open acquires an existing store at path under flags. Fails with
	// wsperr.IoMode if flags specifies neither Read nor Write.
	Open(path string, flags Flags) (Instance, error)

	// Create allocates a brand-new store of exactly totalSize bytes,
	// writes the metadata header at offset 0 followed immediately by
	// the archive descriptor array, and zero-initializes every point
	// region (spec.md section 4.2).
	Create(path string, totalSize int64, archives []codec.Archive, meta codec.Metadata) error
}

// New resolves a Mapping enum value to a concrete Backend instance, per
// spec.md section 9's design note: callers pick a backend by enum, the
// factory does the enum-to-instance lookup rather than the teacher's
// approach of storing a function-pointer table on each handle.
// registry is only consulted for MemoryMapping; pass nil to use
// DefaultRegistry.
func New(mapping Mapping, registry *Registry) Backend {
	switch mapping {
	case FileMapping:
		return NewFile()
	case MmapMapping:
		return NewMmap()
	case MemoryMapping:
		if registry == nil {
			registry = DefaultRegistry
		}

		return NewMemory(registry)
	default:
		return nil
	}
}

// headerAndDescriptors encodes the metadata header followed by the
// archive descriptor array into a single contiguous buffer, the layout
// every Create implementation writes at the front of a new store.
func headerAndDescriptors(archives []codec.Archive, meta codec.Metadata) []byte {
	buf := make([]byte, codec.MetadataSize+len(archives)*codec.ArchiveSize)

	codec.DumpMetadata(buf[:codec.MetadataSize], meta)

	for i, a := range archives {
		off := codec.MetadataSize + i*codec.ArchiveSize
		codec.DumpArchive(buf[off:off+codec.ArchiveSize], a)
	}

	return buf
}
