package importer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-glb/pkg/formats"
)

// Plan is a fully decoded import, ready to hand to a SceneBuilder. Building a
// plan performs every check that can fail the import, so emitting it never
// aborts halfway because of bad input.
type Plan struct {
	Asset     formats.Asset
	Textures  []*TextureSource  // Indexed like the manifest, nil when unresolvable
	Materials []*MaterialSource // Indexed like the manifest
	Scenes    []*ScenePlan
	Meshes    []*DecodedMesh // Every decoded primitive, in mesh/primitive order
	Skipped   []SkipRecord
}

// ScenePlan is one manifest scene.
type ScenePlan struct {
	Index int
	Name  string
	Roots []*NodePlan
}

// NodePlan is one visited node and its decoded geometry.
type NodePlan struct {
	Index    int
	Name     string
	Children []*NodePlan

	Mesh       int // -1 when the node has no mesh
	MeshName   string
	Declared   int            // Primitive count declared by the mesh
	Primitives []*DecodedMesh // Primitives that decoded
}

// NodeCount returns the number of nodes under and including n.
func (n *NodePlan) NodeCount() int {
	total := 1
	for _, c := range n.Children {
		total += c.NodeCount()
	}
	return total
}

// walkScenes builds the node tree of every scene. Each root starts a fresh
// traversal; a node reached twice within one traversal is an error.
func (imp *importer) walkScenes() ([]*ScenePlan, error) {
	doc := imp.doc
	scenes := make([]*ScenePlan, 0, len(doc.Scenes))

	for si := range doc.Scenes {
		scene := &doc.Scenes[si]
		sp := &ScenePlan{Index: si, Name: scene.Name}
		if sp.Name == "" {
			sp.Name = fmt.Sprintf("scene %d", si)
		}

		for _, root := range scene.Nodes {
			visited := make(map[int]bool)
			np, err := imp.walkNode(root, visited)
			if err != nil {
				return nil, fmt.Errorf("scene %d: %w", si, err)
			}
			sp.Roots = append(sp.Roots, np)
		}
		scenes = append(scenes, sp)
	}
	return scenes, nil
}

func (imp *importer) walkNode(idx int, visited map[int]bool) (*NodePlan, error) {
	doc := imp.doc
	if err := checkIndex("node", idx, len(doc.Nodes)); err != nil {
		return nil, err
	}
	if visited[idx] {
		return nil, fmt.Errorf("%w: node %d", ErrNodeRevisited, idx)
	}
	visited[idx] = true

	node := &doc.Nodes[idx]
	np := &NodePlan{Index: idx, Name: node.Name, Mesh: -1}
	if np.Name == "" {
		np.Name = fmt.Sprintf("node %d", idx)
	}

	for _, child := range node.Children {
		cp, err := imp.walkNode(child, visited)
		if err != nil {
			return nil, err
		}
		np.Children = append(np.Children, cp)
	}

	if node.Mesh != nil {
		meshIdx := *node.Mesh
		if err := checkIndex("mesh", meshIdx, len(doc.Meshes)); err != nil {
			return nil, err
		}
		prims, err := imp.decodeMesh(meshIdx)
		if err != nil {
			return nil, err
		}
		np.Mesh = meshIdx
		np.MeshName = doc.Meshes[meshIdx].Name
		np.Declared = len(doc.Meshes[meshIdx].Primitives)
		np.Primitives = prims
	}
	return np, nil
}

// decodeMesh decodes every primitive of a mesh once and caches the result for
// nodes that share the mesh.
func (imp *importer) decodeMesh(meshIdx int) ([]*DecodedMesh, error) {
	if prims, ok := imp.meshCache[meshIdx]; ok {
		return prims, nil
	}

	mesh := &imp.doc.Meshes[meshIdx]
	var prims []*DecodedMesh
	for pi := range mesh.Primitives {
		prim := &mesh.Primitives[pi]
		if prim.Material != nil {
			if err := checkIndex("material", *prim.Material, len(imp.doc.Materials)); err != nil {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, pi, err)
			}
		}

		dm, err := DecodePrimitive(imp.resolver, prim, meshIdx, pi)
		if err != nil {
			if !IsSkip(err) {
				return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIdx, pi, err)
			}
			imp.skipPrimitive(meshIdx, pi, err)
			continue
		}
		dm.Name = primitiveName(mesh, meshIdx, pi)

		imp.log.Debug("primitive decoded",
			zap.Int("mesh", meshIdx),
			zap.Int("primitive", pi),
			zap.Int("vertices", dm.VertexCount()),
			zap.Int("triangles", dm.TriangleCount()))
		prims = append(prims, dm)
		imp.meshes = append(imp.meshes, dm)
	}

	imp.meshCache[meshIdx] = prims
	return prims, nil
}

func (imp *importer) skipPrimitive(meshIdx, primIdx int, err error) {
	reason := skipReason(err)
	imp.log.Warn("primitive skipped",
		zap.Int("mesh", meshIdx),
		zap.Int("primitive", primIdx),
		zap.String("reason", reason))
	imp.skipped = append(imp.skipped, SkipRecord{
		Kind:      SkipPrimitive,
		Mesh:      meshIdx,
		Primitive: primIdx,
		Texture:   -1,
		Reason:    reason,
	})
}

func (imp *importer) skipTexture(texIdx int, err error) {
	reason := skipReason(err)
	imp.log.Warn("texture skipped",
		zap.Int("texture", texIdx),
		zap.String("reason", reason))
	imp.skipped = append(imp.skipped, SkipRecord{
		Kind:      SkipTexture,
		Mesh:      -1,
		Primitive: -1,
		Texture:   texIdx,
		Reason:    reason,
	})
}

func skipReason(err error) string {
	var se *SkipError
	if errors.As(err, &se) {
		return se.Reason
	}
	return err.Error()
}
