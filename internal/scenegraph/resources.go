package scenegraph

import (
	"image"

	"github.com/Faultbox/midgard-glb/internal/importer"
)

// Mesh is a geometry resource built from one decoded primitive.
type Mesh struct {
	Name      string
	Positions [][3]float32
	Colors    [][4]float32 // Always float, byte colors are normalized
	UVs       [][2]float32
	Indices   []uint32
	Bounds    importer.Bounds
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Shader names for the two material kinds.
const (
	ShaderOpaque  = "VertexColor/Opaque"
	ShaderBlended = "VertexColor/Blended"
)

// Material is an opaque or blended vertex-color material.
type Material struct {
	Name        string
	Kind        importer.MaterialKind
	Shader      string
	BaseColor   [4]float32
	DoubleSided bool
	Texture     *Texture // nil when untextured
}

// Texture is an embedded image. Image is nil when the bytes could not be
// decoded or decoding was disabled.
type Texture struct {
	Name     string
	MimeType string
	Format   string // Format reported by image.Decode, empty when undecoded
	Data     []byte
	Image    image.Image
}

// Width returns the decoded image width, or 0.
func (t *Texture) Width() int {
	if t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dx()
}

// Height returns the decoded image height, or 0.
func (t *Texture) Height() int {
	if t.Image == nil {
		return 0
	}
	return t.Image.Bounds().Dy()
}

func newMesh(src *importer.DecodedMesh) *Mesh {
	m := &Mesh{
		Name:      src.Name,
		Positions: src.Positions,
		UVs:       src.UVs,
		Indices:   src.Indices,
		Bounds:    src.Bounds,
	}
	if src.HasByteColors() {
		m.Colors = make([][4]float32, len(src.Colors32))
		for i, c := range src.Colors32 {
			m.Colors[i] = [4]float32{
				float32(c[0]) / 255,
				float32(c[1]) / 255,
				float32(c[2]) / 255,
				float32(c[3]) / 255,
			}
		}
	} else {
		m.Colors = src.Colors
	}
	return m
}
