package importer

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/Faultbox/midgard-glb/pkg/formats"
)

// Helper functions for creating test data

// fixture assembles a manifest and a BIN payload for one embedded buffer.
type fixture struct {
	doc formats.GLTF
	bin []byte
}

func newFixture() *fixture {
	return &fixture{
		doc: formats.GLTF{
			Asset:   formats.Asset{Version: "2.0", Generator: "fixture"},
			Buffers: []formats.Buffer{{}},
		},
	}
}

// addView appends data (4-byte aligned) to the payload and returns the new view index.
func (f *fixture) addView(data []byte, stride int) int {
	for len(f.bin)%4 != 0 {
		f.bin = append(f.bin, 0)
	}
	bv := formats.BufferView{Buffer: 0, ByteOffset: len(f.bin), ByteLength: len(data)}
	if stride > 0 {
		bv.ByteStride = ptr(stride)
	}
	f.bin = append(f.bin, data...)
	f.doc.BufferViews = append(f.doc.BufferViews, bv)
	return len(f.doc.BufferViews) - 1
}

func (f *fixture) addAccessor(view, offset, componentType, count int, typ string) int {
	f.doc.Accessors = append(f.doc.Accessors, formats.Accessor{
		BufferView:    ptr(view),
		ByteOffset:    offset,
		ComponentType: componentType,
		Count:         count,
		Type:          typ,
	})
	return len(f.doc.Accessors) - 1
}

func (f *fixture) addMesh(name string, prims ...formats.Primitive) int {
	f.doc.Meshes = append(f.doc.Meshes, formats.Mesh{Name: name, Primitives: prims})
	return len(f.doc.Meshes) - 1
}

func (f *fixture) addNode(name string, mesh *int, children ...int) int {
	f.doc.Nodes = append(f.doc.Nodes, formats.Node{Name: name, Mesh: mesh, Children: children})
	return len(f.doc.Nodes) - 1
}

func (f *fixture) addScene(roots ...int) {
	f.doc.Scenes = append(f.doc.Scenes, formats.Scene{Nodes: roots})
}

func (f *fixture) resolver() *Resolver {
	f.doc.Buffers[0].ByteLength = len(f.bin)
	return NewResolver(&f.doc, f.bin)
}

func (f *fixture) glb() []byte {
	f.doc.Buffers[0].ByteLength = len(f.bin)
	manifest, err := json.Marshal(&f.doc)
	if err != nil {
		panic(err)
	}
	return formats.EncodeGLB(manifest, f.bin)
}

// triangle holds the accessor indices of a standard three-vertex primitive.
type triangle struct {
	pos, col, idx int
	view          int
}

var (
	triPositions = []float32{
		0, 0, 1,
		1, 0, 2,
		0, 1, 3,
	}
	triFloatColors = []float32{
		1, 0, 0, 1,
		0, 1, 0, 1,
		0, 0, 1, 0.5,
	}
	triByteColors = []byte{
		255, 0, 0, 255,
		0, 255, 0, 255,
		0, 0, 255, 128,
	}
)

// addTriangle lays out positions and colors as consecutive blocks in one
// stride-less view, plus a separate index view.
func (f *fixture) addTriangle(colorType int) triangle {
	data := floats(triPositions...)
	colorOffset := len(data)
	if colorType == formats.ComponentUnsignedByte {
		data = append(data, triByteColors...)
	} else {
		data = append(data, floats(triFloatColors...)...)
	}

	var t triangle
	t.view = f.addView(data, 0)
	t.pos = f.addAccessor(t.view, 0, formats.ComponentFloat, 3, formats.TypeVec3)
	t.col = f.addAccessor(t.view, colorOffset, colorType, 3, formats.TypeVec4)
	t.idx = f.addAccessor(f.addView(u16s(0, 1, 2), 0), 0, formats.ComponentUnsignedShort, 3, formats.TypeScalar)
	return t
}

func (t triangle) primitive() formats.Primitive {
	return formats.Primitive{
		Attributes: map[string]int{
			formats.AttrPosition: t.pos,
			formats.AttrColor0:   t.col,
		},
		Indices: ptr(t.idx),
	}
}

// singleTriangleGLB is one scene, one node, one mesh, one primitive.
func singleTriangleGLB() []byte {
	f := newFixture()
	t := f.addTriangle(formats.ComponentFloat)
	mesh := f.addMesh("tri", t.primitive())
	f.addScene(f.addNode("root", ptr(mesh)))
	return f.glb()
}

func floats(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func u16s(vals ...uint16) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

// hugeValue is 1<<62 on 64-bit platforms: large enough that multiplying it by
// a small count overflows int.
const hugeValue = math.MaxInt/2 + 1

func ptr(i int) *int {
	return &i
}
