package csg

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RecordSize is the packed size of one operation: position, radius, shape
// and kind as little-endian 32-bit words.
const RecordSize = 24

// DefaultOperationLimit caps the operations handed to one remesh.
const DefaultOperationLimit = 256

// EncodeRecords packs ops into fixed-size records. At most limit operations
// are written; limit <= 0 means no cap.
func EncodeRecords(ops []Operation, limit int) []byte {
	if limit > 0 && len(ops) > limit {
		ops = ops[:limit]
	}
	buf := make([]byte, len(ops)*RecordSize)
	for i, op := range ops {
		b := buf[i*RecordSize:]
		le := binary.LittleEndian
		le.PutUint32(b[0:], math.Float32bits(op.Position[0]))
		le.PutUint32(b[4:], math.Float32bits(op.Position[1]))
		le.PutUint32(b[8:], math.Float32bits(op.Position[2]))
		le.PutUint32(b[12:], math.Float32bits(op.Radius))
		le.PutUint32(b[16:], uint32(op.Shape))
		le.PutUint32(b[20:], uint32(op.Kind))
	}
	return buf
}

// DecodeRecords unpacks records produced by EncodeRecords.
func DecodeRecords(buf []byte) ([]Operation, error) {
	if len(buf)%RecordSize != 0 {
		return nil, fmt.Errorf("csg: record buffer length %d is not a multiple of %d", len(buf), RecordSize)
	}
	le := binary.LittleEndian
	ops := make([]Operation, 0, len(buf)/RecordSize)
	for off := 0; off < len(buf); off += RecordSize {
		b := buf[off:]
		op := Operation{
			Position: mgl32.Vec3{
				math.Float32frombits(le.Uint32(b[0:])),
				math.Float32frombits(le.Uint32(b[4:])),
				math.Float32frombits(le.Uint32(b[8:])),
			},
			Radius: math.Float32frombits(le.Uint32(b[12:])),
			Shape:  Shape(le.Uint32(b[16:])),
			Kind:   Kind(le.Uint32(b[20:])),
		}
		if op.Shape < Box || op.Shape > Octahedron {
			return nil, fmt.Errorf("csg: record %d: unknown shape %d", off/RecordSize, int32(op.Shape))
		}
		if op.Kind < Union || op.Kind > Difference {
			return nil, fmt.Errorf("csg: record %d: unknown kind %d", off/RecordSize, int32(op.Kind))
		}
		ops = append(ops, op)
	}
	return ops, nil
}
