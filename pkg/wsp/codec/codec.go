// Package codec parses and serializes the fixed-width big-endian records
// that make up a whisper database: points, archive descriptors, and the
// metadata header.
//
// The codec is pure: no I/O, no allocation beyond the caller-supplied
// destination slices. On-disk fields are always big-endian regardless of
// host byte order (spec.md section 3), unlike the teacher's
// pkg/slotcache/format.go header which is little-endian throughout —
// this package's encode/decode pair plays the same structural role
// (fixed offsets, one PutUintN/UintN call per field) with the opposite
// endianness baked in at every call site.
package codec

import "encoding/binary"

// PointSize is the on-disk size of one Point: 4-byte timestamp + 8-byte
// value, big-endian.
const PointSize = 12

// ArchiveSize is the on-disk size of one archive descriptor.
const ArchiveSize = 12

// MetadataSize is the on-disk size of the metadata header.
const MetadataSize = 16

// Aggregation identifies the reducer bound to a database, stored as a
// u32 enum in the metadata header (spec.md section 3).
type Aggregation uint32

const (
	Average Aggregation = 1
	Sum     Aggregation = 2
	Last    Aggregation = 3
	Max     Aggregation = 4
	Min     Aggregation = 5
)

func (a Aggregation) Valid() bool {
	return a >= Average && a <= Min
}

// Point is one (timestamp, value) sample. A zero Timestamp means the
// slot is empty; a NaN Value means "no valid sample" (spec.md section 3).
type Point struct {
	Timestamp uint32
	Value     float64
}

// Archive is one archive descriptor: the absolute byte offset of its
// first point, its resolution in seconds-per-point, and its slot count.
type Archive struct {
	Offset       uint32
	SecondsPerPoint uint32
	Count        uint32
}

// Retention returns the archive's total time window: spp * count.
func (a Archive) Retention() uint32 {
	return a.SecondsPerPoint * a.Count
}

// Metadata is the 16-byte database header.
type Metadata struct {
	Aggregation   Aggregation
	MaxRetention  uint32
	XFilesFactor  float32
	ArchiveCount  uint32
}

// ParsePoint decodes a 12-byte big-endian record into a Point.
func ParsePoint(buf []byte) Point {
	return Point{
		Timestamp: binary.BigEndian.Uint32(buf[0:4]),
		Value:     float64FromBits(binary.BigEndian.Uint64(buf[4:12])),
	}
}

// DumpPoint encodes p into buf[0:12] as a big-endian record.
func DumpPoint(buf []byte, p Point) {
	binary.BigEndian.PutUint32(buf[0:4], p.Timestamp)
	binary.BigEndian.PutUint64(buf[4:12], bitsFromFloat64(p.Value))
}

// ParsePoints decodes count contiguous 12-byte records starting at
// buf[0:] into out, which must have length >= count. This is the vector
// variant spec.md section 4.1 calls for; it decodes each element with
// ParsePoint.
func ParsePoints(buf []byte, count int, out []Point) {
	for i := 0; i < count; i++ {
		out[i] = ParsePoint(buf[i*PointSize : i*PointSize+PointSize])
	}
}

// DumpPoints encodes points into buf, which must have length >=
// len(points)*PointSize.
func DumpPoints(buf []byte, points []Point) {
	for i, p := range points {
		DumpPoint(buf[i*PointSize:i*PointSize+PointSize], p)
	}
}

// ParseArchive decodes a 12-byte big-endian archive descriptor.
func ParseArchive(buf []byte) Archive {
	return Archive{
		Offset:          binary.BigEndian.Uint32(buf[0:4]),
		SecondsPerPoint: binary.BigEndian.Uint32(buf[4:8]),
		Count:           binary.BigEndian.Uint32(buf[8:12]),
	}
}

// DumpArchive encodes a into buf[0:12].
func DumpArchive(buf []byte, a Archive) {
	binary.BigEndian.PutUint32(buf[0:4], a.Offset)
	binary.BigEndian.PutUint32(buf[4:8], a.SecondsPerPoint)
	binary.BigEndian.PutUint32(buf[8:12], a.Count)
}

// ParseMetadata decodes a 16-byte big-endian metadata header.
func ParseMetadata(buf []byte) Metadata {
	return Metadata{
		Aggregation:  Aggregation(binary.BigEndian.Uint32(buf[0:4])),
		MaxRetention: binary.BigEndian.Uint32(buf[4:8]),
		XFilesFactor: float32FromBits(binary.BigEndian.Uint32(buf[8:12])),
		ArchiveCount: binary.BigEndian.Uint32(buf[12:16]),
	}
}

// DumpMetadata encodes m into buf[0:16].
func DumpMetadata(buf []byte, m Metadata) {
	binary.BigEndian.PutUint32(buf[0:4], uint32(m.Aggregation))
	binary.BigEndian.PutUint32(buf[4:8], m.MaxRetention)
	binary.BigEndian.PutUint32(buf[8:12], bitsFromFloat32(m.XFilesFactor))
	binary.BigEndian.PutUint32(buf[12:16], m.ArchiveCount)
}
