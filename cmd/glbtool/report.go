package main

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/midgard-glb/internal/importer"
	"github.com/Faultbox/midgard-glb/pkg/formats"
)

type fileInfo struct {
	File          string         `yaml:"file"`
	Version       uint32         `yaml:"version"`
	Length        uint32         `yaml:"length"`
	JSONBytes     int            `yaml:"json_bytes"`
	BINBytes      int            `yaml:"bin_bytes"`
	SkippedChunks int            `yaml:"skipped_chunks"`
	HasBIN        bool           `yaml:"has_bin"`
	DefaultScene  int            `yaml:"default_scene"`
	Asset         formats.Asset  `yaml:"asset"`
	Counts        manifestCounts `yaml:"counts"`
}

type manifestCounts struct {
	Scenes      int `yaml:"scenes"`
	Nodes       int `yaml:"nodes"`
	Meshes      int `yaml:"meshes"`
	Primitives  int `yaml:"primitives"`
	Materials   int `yaml:"materials"`
	Textures    int `yaml:"textures"`
	Images      int `yaml:"images"`
	Accessors   int `yaml:"accessors"`
	BufferViews int `yaml:"buffer_views"`
}

func newFileInfo(path string, glb *formats.GLB, doc *formats.GLTF) fileInfo {
	return fileInfo{
		File:          path,
		Version:       glb.Header.Version,
		Length:        glb.Header.Length,
		JSONBytes:     len(glb.JSON),
		BINBytes:      len(glb.BIN),
		SkippedChunks: glb.Skipped,
		HasBIN:        glb.HasBIN(),
		DefaultScene:  doc.DefaultScene(),
		Asset:         doc.Asset,
		Counts: manifestCounts{
			Scenes:      len(doc.Scenes),
			Nodes:       len(doc.Nodes),
			Meshes:      len(doc.Meshes),
			Primitives:  doc.TotalPrimitiveCount(),
			Materials:   len(doc.Materials),
			Textures:    len(doc.Textures),
			Images:      len(doc.Images),
			Accessors:   len(doc.Accessors),
			BufferViews: len(doc.BufferViews),
		},
	}
}

type meshInfo struct {
	Name      string     `yaml:"name"`
	Mesh      int        `yaml:"mesh"`
	Primitive int        `yaml:"primitive"`
	Vertices  int        `yaml:"vertices"`
	Triangles int        `yaml:"triangles"`
	Colors    string     `yaml:"colors"`
	UVs       bool       `yaml:"uvs"`
	Material  int        `yaml:"material"`
	Min       [3]float32 `yaml:"min,flow"`
	Max       [3]float32 `yaml:"max,flow"`
}

func newMeshInfo(m *importer.DecodedMesh) meshInfo {
	colors := "float"
	if m.HasByteColors() {
		colors = "ubyte"
	}
	return meshInfo{
		Name:      m.Name,
		Mesh:      m.MeshIndex,
		Primitive: m.PrimitiveIndex,
		Vertices:  m.VertexCount(),
		Triangles: m.TriangleCount(),
		Colors:    colors,
		UVs:       m.UVs != nil,
		Material:  m.Material,
		Min:       m.Bounds.Min,
		Max:       m.Bounds.Max,
	}
}

type skipInfo struct {
	Kind      importer.SkipKind `yaml:"kind"`
	Mesh      int               `yaml:"mesh,omitempty"`
	Primitive int               `yaml:"primitive,omitempty"`
	Texture   int               `yaml:"texture,omitempty"`
	Reason    string            `yaml:"reason"`
}

func newSkipInfo(s importer.SkipRecord) skipInfo {
	info := skipInfo{Kind: s.Kind, Reason: s.Reason}
	if s.Kind == importer.SkipTexture {
		info.Texture = s.Texture
	} else {
		info.Mesh = s.Mesh
		info.Primitive = s.Primitive
	}
	return info
}

type treeNode struct {
	Name       string     `yaml:"name"`
	Mesh       string     `yaml:"mesh,omitempty"`
	Primitives []string   `yaml:"primitives,omitempty,flow"`
	Children   []treeNode `yaml:"children,omitempty"`
}

func newSceneTree(scenes []*importer.ScenePlan) []treeNode {
	out := make([]treeNode, 0, len(scenes))
	for _, sp := range scenes {
		scene := treeNode{Name: sp.Name}
		for _, np := range sp.Roots {
			scene.Children = append(scene.Children, newNodeTree(np))
		}
		out = append(out, scene)
	}
	return out
}

func newNodeTree(np *importer.NodePlan) treeNode {
	n := treeNode{Name: np.Name}
	if np.Mesh >= 0 {
		n.Mesh = np.MeshName
		if n.Mesh == "" {
			n.Mesh = fmt.Sprintf("mesh %d", np.Mesh)
		}
		for _, dm := range np.Primitives {
			n.Primitives = append(n.Primitives, dm.Name)
		}
	}
	for _, c := range np.Children {
		n.Children = append(n.Children, newNodeTree(c))
	}
	return n
}

// dumpDoc is the full YAML dump of a decoded import.
type dumpDoc struct {
	Info      fileInfo       `yaml:"info"`
	Scenes    []treeNode     `yaml:"scenes"`
	Meshes    []meshInfo     `yaml:"meshes"`
	Materials []materialInfo `yaml:"materials,omitempty"`
	Textures  []textureInfo  `yaml:"textures,omitempty"`
	Skipped   []skipInfo     `yaml:"skipped,omitempty"`
}

type materialInfo struct {
	Name        string     `yaml:"name"`
	Kind        string     `yaml:"kind"`
	BaseColor   [4]float32 `yaml:"base_color,flow"`
	DoubleSided bool       `yaml:"double_sided,omitempty"`
	Texture     int        `yaml:"texture"`
}

type textureInfo struct {
	Name     string `yaml:"name"`
	MimeType string `yaml:"mime_type,omitempty"`
	Format   string `yaml:"format,omitempty"`
	Width    int    `yaml:"width,omitempty"`
	Height   int    `yaml:"height,omitempty"`
	Bytes    int    `yaml:"bytes"`
	File     string `yaml:"file,omitempty"`
}

func newDumpDoc(info fileInfo, plan *importer.Plan) dumpDoc {
	doc := dumpDoc{
		Info:   info,
		Scenes: newSceneTree(plan.Scenes),
		Meshes: make([]meshInfo, 0, len(plan.Meshes)),
	}
	for _, m := range plan.Meshes {
		doc.Meshes = append(doc.Meshes, newMeshInfo(m))
	}
	for _, m := range plan.Materials {
		doc.Materials = append(doc.Materials, materialInfo{
			Name:        m.Name,
			Kind:        m.Kind.String(),
			BaseColor:   m.BaseColor,
			DoubleSided: m.DoubleSided,
			Texture:     m.Texture,
		})
	}
	for _, t := range plan.Textures {
		if t == nil {
			continue
		}
		doc.Textures = append(doc.Textures, textureInfo{Name: t.Name, MimeType: t.MimeType, Bytes: len(t.Data)})
	}
	for _, s := range plan.Skipped {
		doc.Skipped = append(doc.Skipped, newSkipInfo(s))
	}
	return doc
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
