package backend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
	"github.com/calvinalkan/wsp/pkg/wsp/wsperr"
)

func testArchives() []codec.Archive {
	return []codec.Archive{
		{Offset: 16 + 2*codec.ArchiveSize, SecondsPerPoint: 60, Count: 10},
		{Offset: 16 + 2*codec.ArchiveSize + 10*codec.PointSize, SecondsPerPoint: 120, Count: 6},
	}
}

func testMeta() codec.Metadata {
	return codec.Metadata{
		Aggregation:  codec.Average,
		MaxRetention: 60 * 10,
		XFilesFactor: 0.5,
		ArchiveCount: 2,
	}
}

func totalSize(archives []codec.Archive) int64 {
	last := archives[len(archives)-1]
	return int64(last.Offset) + int64(last.Count)*codec.PointSize
}

func TestMemoryCreateOpenRoundTrip(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	b := NewMemory(reg)
	archives := testArchives()

	require.NoError(t, b.Create("a3", totalSize(archives), archives, testMeta()))

	inst, err := b.Open("a3", Read|Write)
	require.NoError(t, err)
	defer inst.Close()

	buf := make([]byte, codec.MetadataSize)
	require.NoError(t, inst.ReadInto(buf, 0))

	got := codec.ParseMetadata(buf)
	require.Equal(t, testMeta(), got)
	require.False(t, inst.ManualBuf())
}

func TestMemoryOpenMissingIsIoError(t *testing.T) {
	t.Parallel()

	b := NewMemory(NewRegistry())

	_, err := b.Open("does-not-exist", Read)
	require.Error(t, err)
	require.ErrorIs(t, err, wsperr.Io)
}

func TestMemoryOpenRejectsNoFlags(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	b := NewMemory(reg)
	archives := testArchives()
	require.NoError(t, b.Create("x", totalSize(archives), archives, testMeta()))

	_, err := b.Open("x", 0)
	require.Error(t, err)
}

func TestMemoryCreateReplacesByName(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	b := NewMemory(reg)
	archives := testArchives()

	require.NoError(t, b.Create("x", totalSize(archives), archives, testMeta()))

	meta2 := testMeta()
	meta2.XFilesFactor = 0.9
	require.NoError(t, b.Create("x", totalSize(archives), archives, meta2))

	inst, err := b.Open("x", Read)
	require.NoError(t, err)
	defer inst.Close()

	buf := make([]byte, codec.MetadataSize)
	require.NoError(t, inst.ReadInto(buf, 0))
	require.Equal(t, float32(0.9), codec.ParseMetadata(buf).XFilesFactor)
}

func TestFileCreateOpenRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.wsp")

	b := NewFile()
	archives := testArchives()
	require.NoError(t, b.Create(path, totalSize(archives), archives, testMeta()))

	inst, err := b.Open(path, Read|Write)
	require.NoError(t, err)
	defer inst.Close()

	require.True(t, inst.ManualBuf())

	buf, err := inst.Read(0, codec.MetadataSize)
	require.NoError(t, err)
	require.Equal(t, testMeta(), codec.ParseMetadata(buf))

	// Write a point into archive 0's first slot and read it back.
	pointBuf := make([]byte, codec.PointSize)
	codec.DumpPoint(pointBuf, codec.Point{Timestamp: 600, Value: 1.5})
	require.NoError(t, inst.Write(pointBuf, int64(archives[0].Offset)))

	readBack := make([]byte, codec.PointSize)
	require.NoError(t, inst.ReadInto(readBack, int64(archives[0].Offset)))
	require.Equal(t, codec.Point{Timestamp: 600, Value: 1.5}, codec.ParsePoint(readBack))
}

func TestFileOpenRejectsNoFlags(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.wsp")

	b := NewFile()
	archives := testArchives()
	require.NoError(t, b.Create(path, totalSize(archives), archives, testMeta()))

	_, err := b.Open(path, 0)
	require.Error(t, err)
}

func TestFileCreateSizeExact(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a3.wsp")

	b := NewFile()
	archives := testArchives()
	size := totalSize(archives)
	require.NoError(t, b.Create(path, size, archives, testMeta()))

	inst, err := b.Open(path, Read)
	require.NoError(t, err)
	defer inst.Close()

	// size == 16 + 24 + (10*12 + 6*12) == 232, per spec.md section 8 scenario 1.
	require.EqualValues(t, 232, size)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, 232, info.Size())
}
