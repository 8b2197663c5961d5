package backend

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/wsp/pkg/wsp/codec"
)

func TestMmapCreateOpenRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.wsp")

	b := NewMmap()
	archives := testArchives()
	require.NoError(t, b.Create(path, totalSize(archives), archives, testMeta()))

	inst, err := b.Open(path, Read|Write)
	require.NoError(t, err)
	defer inst.Close()

	require.False(t, inst.ManualBuf())

	buf, err := inst.Read(0, codec.MetadataSize)
	require.NoError(t, err)
	require.Equal(t, testMeta(), codec.ParseMetadata(buf))

	pointBuf := make([]byte, codec.PointSize)
	codec.DumpPoint(pointBuf, codec.Point{Timestamp: 600, Value: 1.5})
	require.NoError(t, inst.Write(pointBuf, int64(archives[0].Offset)))

	readBack := make([]byte, codec.PointSize)
	require.NoError(t, inst.ReadInto(readBack, int64(archives[0].Offset)))
	require.Equal(t, codec.Point{Timestamp: 600, Value: 1.5}, codec.ParsePoint(readBack))
}

func TestMmapReadOutOfBounds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "a.wsp")

	b := NewMmap()
	archives := testArchives()
	size := totalSize(archives)
	require.NoError(t, b.Create(path, size, archives, testMeta()))

	inst, err := b.Open(path, Read)
	require.NoError(t, err)
	defer inst.Close()

	_, err = inst.Read(size-4, 8)
	require.Error(t, err)
}
