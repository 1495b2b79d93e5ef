// Package formats provides parsers for the binary glTF (GLB) container and its JSON manifest.
// glTF 2.0 manifest model for the subset the importer understands.
package formats

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidManifest is returned when the JSON chunk cannot be deserialized.
var ErrInvalidManifest = errors.New("invalid glTF manifest")

// Component type codes.
const (
	ComponentByte          = 5120
	ComponentUnsignedByte  = 5121
	ComponentShort         = 5122
	ComponentUnsignedShort = 5123
	ComponentUnsignedInt   = 5125
	ComponentFloat         = 5126
)

// Element type tags.
const (
	TypeScalar = "SCALAR"
	TypeVec2   = "VEC2"
	TypeVec3   = "VEC3"
	TypeVec4   = "VEC4"
	TypeMat2   = "MAT2"
	TypeMat3   = "MAT3"
	TypeMat4   = "MAT4"
)

// Attribute semantics.
const (
	AttrPosition  = "POSITION"
	AttrColor0    = "COLOR_0"
	AttrTexCoord0 = "TEXCOORD_0"
)

// Primitive render modes.
const (
	ModePoints    = 0
	ModeLines     = 1
	ModeTriangles = 4
)

// Material alpha modes.
const (
	AlphaOpaque = "OPAQUE"
	AlphaMask   = "MASK"
	AlphaBlend  = "BLEND"
)

// GLTF is the root of a glTF manifest. Cross-references between entries are
// plain indices into these slices.
type GLTF struct {
	Asset       Asset        `json:"asset"`
	Scene       *int         `json:"scene"`
	Scenes      []Scene      `json:"scenes"`
	Nodes       []Node       `json:"nodes"`
	Meshes      []Mesh       `json:"meshes"`
	Materials   []Material   `json:"materials"`
	Accessors   []Accessor   `json:"accessors"`
	BufferViews []BufferView `json:"bufferViews"`
	Buffers     []Buffer     `json:"buffers"`
	Textures    []Texture    `json:"textures"`
	Images      []Image      `json:"images"`
}

// Asset holds manifest metadata.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// Scene lists the root nodes of one scene.
type Scene struct {
	Name  string `json:"name"`
	Nodes []int  `json:"nodes"`
}

// Node is one entry of the node hierarchy.
type Node struct {
	Name     string `json:"name"`
	Children []int  `json:"children"`
	Mesh     *int   `json:"mesh"`
}

// Mesh is a set of primitives.
type Mesh struct {
	Name       string      `json:"name"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one drawable geometry unit.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices"`
	Material   *int           `json:"material"`
	Mode       *int           `json:"mode"`
}

// RenderMode returns the primitive mode, defaulting to triangles.
func (p *Primitive) RenderMode() int {
	if p.Mode == nil {
		return ModeTriangles
	}
	return *p.Mode
}

// Attribute returns the accessor index for a semantic.
func (p *Primitive) Attribute(name string) (int, bool) {
	idx, ok := p.Attributes[name]
	return idx, ok
}

// Material describes surface appearance.
type Material struct {
	Name                 string                `json:"name"`
	AlphaMode            string                `json:"alphaMode"`
	DoubleSided          bool                  `json:"doubleSided"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness"`
}

// BaseColorTexture returns the base color texture index, if any.
func (m *Material) BaseColorTexture() (int, bool) {
	if m.PBRMetallicRoughness == nil || m.PBRMetallicRoughness.BaseColorTexture == nil {
		return 0, false
	}
	return m.PBRMetallicRoughness.BaseColorTexture.Index, true
}

// IsOpaque reports whether the material renders without blending.
// Anything other than an absent or OPAQUE alpha mode is treated as blended.
func (m *Material) IsOpaque() bool {
	return m.AlphaMode == "" || m.AlphaMode == AlphaOpaque
}

// PBRMetallicRoughness holds the metallic-roughness parameters.
type PBRMetallicRoughness struct {
	BaseColorFactor  *[4]float32  `json:"baseColorFactor"`
	BaseColorTexture *TextureInfo `json:"baseColorTexture"`
}

// TextureInfo references a texture.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord"`
}

// Accessor describes how to read a typed array from a buffer view.
type Accessor struct {
	BufferView    *int      `json:"bufferView"`
	ByteOffset    int       `json:"byteOffset"`
	ComponentType int       `json:"componentType"`
	Normalized    bool      `json:"normalized"`
	Count         int       `json:"count"`
	Type          string    `json:"type"`
	Min           []float64 `json:"min"`
	Max           []float64 `json:"max"`
}

// ElementSize returns the tightly packed size of one element in bytes,
// or 0 for an unknown component or element type.
func (a *Accessor) ElementSize() int {
	return ComponentSize(a.ComponentType) * ComponentCount(a.Type)
}

// BufferView is a byte window into a buffer.
type BufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride"`
}

// Stride returns the explicit byte stride, or def when none is declared.
func (bv *BufferView) Stride(def int) int {
	if bv.ByteStride == nil || *bv.ByteStride <= 0 {
		return def
	}
	return *bv.ByteStride
}

// Buffer is a block of binary data. A buffer without a URI refers to the GLB BIN chunk.
type Buffer struct {
	URI        string `json:"uri"`
	ByteLength int    `json:"byteLength"`
}

// IsEmbedded returns true if the buffer is backed by the GLB binary chunk.
func (b *Buffer) IsEmbedded() bool {
	return b.URI == ""
}

// Texture pairs an image source with sampling state.
type Texture struct {
	Name   string `json:"name"`
	Source *int   `json:"source"`
}

// Image is either an external URI or an embedded buffer view.
type Image struct {
	Name       string `json:"name"`
	URI        string `json:"uri"`
	MimeType   string `json:"mimeType"`
	BufferView *int   `json:"bufferView"`
}

// IsEmbedded returns true if the image bytes live in a buffer view.
func (img *Image) IsEmbedded() bool {
	return img.URI == "" && img.BufferView != nil
}

// ParseGLTF deserializes a glTF JSON manifest. Unknown fields are ignored and
// missing lists decode as empty. Cross-references are not validated here.
func ParseGLTF(data []byte) (*GLTF, error) {
	var doc GLTF
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return &doc, nil
}

// ComponentSize returns the byte size of a component type code.
func ComponentSize(componentType int) int {
	switch componentType {
	case ComponentByte, ComponentUnsignedByte:
		return 1
	case ComponentShort, ComponentUnsignedShort:
		return 2
	case ComponentUnsignedInt, ComponentFloat:
		return 4
	default:
		return 0
	}
}

// ComponentCount returns the number of components for an element type tag.
func ComponentCount(elementType string) int {
	switch elementType {
	case TypeScalar:
		return 1
	case TypeVec2:
		return 2
	case TypeVec3:
		return 3
	case TypeVec4, TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	default:
		return 0
	}
}

// ComponentTypeName returns a readable name for a component type code.
func ComponentTypeName(componentType int) string {
	switch componentType {
	case ComponentByte:
		return "BYTE"
	case ComponentUnsignedByte:
		return "UNSIGNED_BYTE"
	case ComponentShort:
		return "SHORT"
	case ComponentUnsignedShort:
		return "UNSIGNED_SHORT"
	case ComponentUnsignedInt:
		return "UNSIGNED_INT"
	case ComponentFloat:
		return "FLOAT"
	default:
		return fmt.Sprintf("Unknown(%d)", componentType)
	}
}

// TotalPrimitiveCount returns the number of primitives across all meshes.
func (g *GLTF) TotalPrimitiveCount() int {
	total := 0
	for _, m := range g.Meshes {
		total += len(m.Primitives)
	}
	return total
}

// DefaultScene returns the index of the default scene, or -1 when the
// manifest declares none and has no scenes.
func (g *GLTF) DefaultScene() int {
	if g.Scene != nil {
		return *g.Scene
	}
	if len(g.Scenes) > 0 {
		return 0
	}
	return -1
}
