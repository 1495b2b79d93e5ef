// Package importer decodes GLB scenes into platform-agnostic mesh, material and
// texture records and hands them to a SceneBuilder.
package importer

import "fmt"

// DecodedMesh is one decoded primitive. Exactly one of Colors and Colors32 is set.
type DecodedMesh struct {
	Name           string
	MeshIndex      int
	PrimitiveIndex int

	Positions [][3]float32 // Z already negated
	Colors    [][4]float32 // FLOAT colors
	Colors32  [][4]uint8   // UNSIGNED_BYTE colors, 0-255 per channel
	UVs       [][2]float32 // nil without TEXCOORD_0
	Indices   []uint32     // Triangle list

	Material int // Manifest material index, -1 for none
	Bounds   Bounds
}

// VertexCount returns the number of vertices.
func (m *DecodedMesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *DecodedMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the three vertex indices of triangle i.
func (m *DecodedMesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
}

// HasByteColors returns true if colors were stored as packed bytes.
func (m *DecodedMesh) HasByteColors() bool {
	return m.Colors32 != nil
}

// HasMaterial returns true if the primitive references a material.
func (m *DecodedMesh) HasMaterial() bool {
	return m.Material >= 0
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Size returns the extent of the box along each axis.
func (b Bounds) Size() [3]float32 {
	return [3]float32{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1], b.Max[2] - b.Min[2]}
}

func computeBounds(positions [][3]float32) Bounds {
	if len(positions) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: positions[0], Max: positions[0]}
	for _, p := range positions[1:] {
		for i := 0; i < 3; i++ {
			if p[i] < b.Min[i] {
				b.Min[i] = p[i]
			}
			if p[i] > b.Max[i] {
				b.Max[i] = p[i]
			}
		}
	}
	return b
}

// TextureSource is an embedded image resolved from the manifest.
type TextureSource struct {
	Index    int
	Name     string
	MimeType string
	Data     []byte // Copy of the image bytes
}

// MaterialKind selects between the two material resources a builder provides.
type MaterialKind int

const (
	MaterialOpaque  MaterialKind = 0
	MaterialBlended MaterialKind = 1
)

// String returns a human-readable kind name.
func (k MaterialKind) String() string {
	switch k {
	case MaterialOpaque:
		return "Opaque"
	case MaterialBlended:
		return "Blended"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// MaterialSource is a material resolved from the manifest.
type MaterialSource struct {
	Index       int
	Name        string
	Kind        MaterialKind
	DoubleSided bool
	BaseColor   [4]float32
	Texture     int // Index into the texture list, -1 when unbound or unresolvable
}

// SkipKind identifies what a skip record refers to.
type SkipKind string

const (
	SkipPrimitive SkipKind = "primitive"
	SkipTexture   SkipKind = "texture"
)

// SkipRecord describes one dropped primitive or texture.
type SkipRecord struct {
	Kind      SkipKind
	Mesh      int // -1 for textures
	Primitive int // -1 for textures
	Texture   int // -1 for primitives
	Reason    string
}

// String returns a one-line description.
func (s SkipRecord) String() string {
	if s.Kind == SkipTexture {
		return fmt.Sprintf("texture %d: %s", s.Texture, s.Reason)
	}
	return fmt.Sprintf("mesh %d primitive %d: %s", s.Mesh, s.Primitive, s.Reason)
}
