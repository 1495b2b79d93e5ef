package importer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/midgard-glb/pkg/formats"
)

// Default strides used when a buffer view declares no byteStride. Each is the
// packed size of the one element layout the decoder accepts for that
// attribute, so accessors sharing a stride-less view are read as consecutive
// blocks rather than interleaved. The fixed defaults reproduce how existing
// files were read and may not match the writer's layout; whether they should
// follow the accessor's own element size is an open question.
const (
	DefaultPositionStride   = 3 * 4
	DefaultFloatColorStride = 4 * 4
	DefaultByteColorStride  = 4 * 1
	DefaultUVStride         = 2 * 4
	indexSize               = 2
)

// Location is a resolved accessor: where element n starts in the binary payload.
type Location struct {
	AccessorIndex   int
	Accessor        *formats.Accessor
	BufferViewIndex int
	BufferView      *formats.BufferView
	Base            int // bufferView.byteOffset + accessor.byteOffset
	Stride          int
	ElementSize     int
}

// Offset returns the byte offset of element n.
func (l *Location) Offset(n int) int {
	return l.Base + n*l.Stride
}

// Count returns the number of elements.
func (l *Location) Count() int {
	return l.Accessor.Count
}

// Resolver locates accessor data inside the GLB binary payload.
type Resolver struct {
	doc *formats.GLTF
	bin []byte
}

// NewResolver creates a resolver over a manifest and its binary payload.
func NewResolver(doc *formats.GLTF, bin []byte) *Resolver {
	return &Resolver{doc: doc, bin: bin}
}

// Accessor returns the accessor at idx, failing fatally if it does not exist.
func (r *Resolver) Accessor(idx int) (*formats.Accessor, error) {
	if err := checkIndex("accessor", idx, len(r.doc.Accessors)); err != nil {
		return nil, err
	}
	return &r.doc.Accessors[idx], nil
}

// View returns the buffer view at idx after checking that it and its buffer
// exist and that the buffer is backed by the BIN chunk.
func (r *Resolver) View(idx int) (*formats.BufferView, error) {
	if err := checkIndex("bufferView", idx, len(r.doc.BufferViews)); err != nil {
		return nil, err
	}
	bv := &r.doc.BufferViews[idx]

	if err := checkIndex("buffer", bv.Buffer, len(r.doc.Buffers)); err != nil {
		return nil, err
	}
	if buf := &r.doc.Buffers[bv.Buffer]; !buf.IsEmbedded() {
		return nil, skipf("buffer %d is external (%s)", bv.Buffer, buf.URI)
	}
	return bv, nil
}

// Resolve computes the location of an accessor's elements. defaultStride is
// used when the buffer view has no byteStride.
func (r *Resolver) Resolve(accessorIdx, defaultStride int) (*Location, error) {
	acc, err := r.Accessor(accessorIdx)
	if err != nil {
		return nil, err
	}
	if acc.BufferView == nil {
		return nil, skipf("accessor %d has no bufferView", accessorIdx)
	}

	bv, err := r.View(*acc.BufferView)
	if err != nil {
		return nil, err
	}

	elemSize := acc.ElementSize()
	if elemSize == 0 {
		return nil, skipf("accessor %d has unknown layout %s/%d", accessorIdx, acc.Type, acc.ComponentType)
	}

	if bv.ByteOffset < 0 || acc.ByteOffset < 0 ||
		bv.ByteOffset > len(r.bin) || acc.ByteOffset > len(r.bin)-bv.ByteOffset {
		return nil, skipf("accessor %d: offset %d+%d outside payload of %d bytes",
			accessorIdx, bv.ByteOffset, acc.ByteOffset, len(r.bin))
	}

	loc := &Location{
		AccessorIndex:   accessorIdx,
		Accessor:        acc,
		BufferViewIndex: *acc.BufferView,
		BufferView:      bv,
		Base:            bv.ByteOffset + acc.ByteOffset,
		Stride:          bv.Stride(defaultStride),
		ElementSize:     elemSize,
	}

	if err := r.checkRange(loc.Base, loc.Stride, loc.ElementSize, acc.Count); err != nil {
		return nil, skipf("accessor %d: %v", accessorIdx, err)
	}
	return loc, nil
}

// checkRange verifies that count elements of size bytes, stride apart from
// base, all lie inside the binary payload. count*stride is never computed,
// as it can overflow for manifest-supplied values.
func (r *Resolver) checkRange(base, stride, size, count int) error {
	if base < 0 || stride <= 0 || size < 0 || count < 0 {
		return fmt.Errorf("invalid layout base=%d stride=%d count=%d", base, stride, count)
	}
	if count == 0 {
		return nil
	}
	if base > len(r.bin) || size > len(r.bin)-base {
		return fmt.Errorf("element at byte %d of size %d exceeds payload of %d bytes", base, size, len(r.bin))
	}
	if last := count - 1; last > (len(r.bin)-base-size)/stride {
		return fmt.Errorf("%d elements of stride %d from byte %d exceed payload of %d bytes",
			count, stride, base, len(r.bin))
	}
	return nil
}

func (r *Resolver) float32At(off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(r.bin[off:]))
}

func (r *Resolver) uint16At(off int) uint16 {
	return binary.LittleEndian.Uint16(r.bin[off:])
}

// ReadVec3 reads element n of a location as three floats.
func (r *Resolver) ReadVec3(loc *Location, n int) [3]float32 {
	off := loc.Offset(n)
	return [3]float32{r.float32At(off), r.float32At(off + 4), r.float32At(off + 8)}
}

// ReadVec4 reads element n of a location as four floats.
func (r *Resolver) ReadVec4(loc *Location, n int) [4]float32 {
	off := loc.Offset(n)
	return [4]float32{r.float32At(off), r.float32At(off + 4), r.float32At(off + 8), r.float32At(off + 12)}
}

// ReadVec2 reads element n of a location as two floats.
func (r *Resolver) ReadVec2(loc *Location, n int) [2]float32 {
	off := loc.Offset(n)
	return [2]float32{r.float32At(off), r.float32At(off + 4)}
}

// ReadUByte4 reads element n of a location as four unsigned bytes.
func (r *Resolver) ReadUByte4(loc *Location, n int) [4]uint8 {
	off := loc.Offset(n)
	return [4]uint8{r.bin[off], r.bin[off+1], r.bin[off+2], r.bin[off+3]}
}

// ViewBytes returns a copy of a buffer view's bytes.
func (r *Resolver) ViewBytes(bv *formats.BufferView) ([]byte, error) {
	if err := r.checkRange(bv.ByteOffset, 1, 1, bv.ByteLength); err != nil {
		return nil, err
	}
	out := make([]byte, bv.ByteLength)
	copy(out, r.bin[bv.ByteOffset:])
	return out, nil
}
