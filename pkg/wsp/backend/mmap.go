package backend

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/wsperr"
)

// Mmap is the shared-memory-mapped storage backend. Reads return a
// zero-copy view directly into the mapping (ManualBuf is false); writes
// overwrite the mapping in place. Grounded on the teacher's
// cache_binary.go LoadBinaryCache, which syscall.Mmaps a read-only cache
// file — generalized here to x/sys/unix (already in the teacher's
// go.mod) and to read-write mappings so Update can write through them.
type Mmap struct{}

// NewMmap returns the Mmap backend.
func NewMmap() *Mmap {
	return &Mmap{}
}

func (b *Mmap) Open(path string, flags Flags) (Instance, error) {
	if flags&(Read|Write) == 0 {
		return nil, wsperr.New(wsperr.IoMode, "open", nil)
	}

	osFlags := os.O_RDONLY
	prot := unix.PROT_READ

	if flags&Write != 0 {
		if flags&Read != 0 {
			osFlags = os.O_RDWR
			prot = unix.PROT_READ | unix.PROT_WRITE
		} else {
			osFlags = os.O_WRONLY
			prot = unix.PROT_WRITE
		}
	}

	f, err := os.OpenFile(path, osFlags, filePerms) //nolint:gosec // path is caller-controlled
	if err != nil {
		return nil, wsperr.New(wsperr.Open, "open", err)
	}
	defer f.Close() //nolint:errcheck // fd is only needed to establish the mapping

	info, err := f.Stat()
	if err != nil {
		return nil, wsperr.New(wsperr.Io, "open", err)
	}

	size := int(info.Size())
	if size == 0 {
		return nil, wsperr.New(wsperr.IoOffset, "open", nil)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, unix.MAP_SHARED)
	if err != nil {
		return nil, wsperr.New(wsperr.Mmap, "open", err)
	}

	return &mmapInstance{data: data}, nil
}

func (b *Mmap) Create(path string, totalSize int64, archives []codec.Archive, meta codec.Metadata) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, filePerms) //nolint:gosec // path is caller-controlled
	if err != nil {
		return wsperr.New(wsperr.Open, "create", err)
	}
	defer f.Close() //nolint:errcheck // fd is only needed to establish the mapping

	if err := f.Truncate(totalSize); err != nil {
		return wsperr.New(wsperr.Ftruncate, "create", err)
	}

	if err := f.Sync(); err != nil {
		return wsperr.New(wsperr.Fsync, "create", err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(totalSize), unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return wsperr.New(wsperr.Mmap, "create", err)
	}
	defer unix.Munmap(data) //nolint:errcheck // best-effort unmap after the header write

	copy(data, headerAndDescriptors(archives, meta))
	// Point regions past the header+descriptors stay zero: Truncate
	// extends the file with zero bytes.

	if err := unix.Msync(data, unix.MS_SYNC); err != nil {
		return wsperr.New(wsperr.Fsync, "create", err)
	}

	return nil
}

type mmapInstance struct {
	data []byte
}

func (i *mmapInstance) Read(offset int64, size int) ([]byte, error) {
	if offset < 0 || offset+int64(size) > int64(len(i.data)) {
		return nil, wsperr.New(wsperr.IoOffset, "read", nil)
	}

	return i.data[offset : offset+int64(size) : offset+int64(size)], nil
}

func (i *mmapInstance) ReadInto(dst []byte, offset int64) error {
	if offset < 0 || offset+int64(len(dst)) > int64(len(i.data)) {
		return wsperr.New(wsperr.IoOffset, "read", nil)
	}

	copy(dst, i.data[offset:offset+int64(len(dst))])

	return nil
}

func (i *mmapInstance) Write(src []byte, offset int64) error {
	if offset < 0 || offset+int64(len(src)) > int64(len(i.data)) {
		return wsperr.New(wsperr.IoOffset, "write", nil)
	}

	copy(i.data[offset:offset+int64(len(src))], src)

	return nil
}

func (i *mmapInstance) ManualBuf() bool { return false }

func (i *mmapInstance) Close() error {
	if i.data == nil {
		return nil
	}

	err := unix.Munmap(i.data)
	i.data = nil

	if err != nil {
		return wsperr.New(wsperr.Io, "close", err)
	}

	return nil
}

var _ Backend = (*Mmap)(nil)
