package importer

import (
	"fmt"

	"github.com/Faultbox/midgard-glb/pkg/formats"
)

// DecodePrimitive converts one primitive into a DecodedMesh.
//
// A *SkipError (IsSkip) means the primitive falls outside the supported subset
// and should be dropped. Any other error is fatal for the import.
func DecodePrimitive(r *Resolver, prim *formats.Primitive, meshIdx, primIdx int) (*DecodedMesh, error) {
	posIdx, hasPos := prim.Attribute(formats.AttrPosition)
	colIdx, hasCol := prim.Attribute(formats.AttrColor0)
	if !hasPos || !hasCol {
		return nil, skipf("primitive needs both POSITION and COLOR_0")
	}

	if mode := prim.RenderMode(); mode != formats.ModeTriangles {
		return nil, skipf("render mode %d is not TRIANGLES", mode)
	}

	posAcc, err := r.Accessor(posIdx)
	if err != nil {
		return nil, err
	}
	if posAcc.Type != formats.TypeVec3 || posAcc.ComponentType != formats.ComponentFloat {
		return nil, skipf("POSITION is %s/%s, want VEC3/FLOAT",
			posAcc.Type, formats.ComponentTypeName(posAcc.ComponentType))
	}

	colAcc, err := r.Accessor(colIdx)
	if err != nil {
		return nil, err
	}
	if colAcc.Type != formats.TypeVec4 ||
		(colAcc.ComponentType != formats.ComponentFloat && colAcc.ComponentType != formats.ComponentUnsignedByte) {
		return nil, skipf("COLOR_0 is %s/%s, want VEC4/FLOAT or VEC4/UNSIGNED_BYTE",
			colAcc.Type, formats.ComponentTypeName(colAcc.ComponentType))
	}

	if !sameView(colAcc.BufferView, posAcc.BufferView) {
		return nil, skipf("COLOR_0 and POSITION use different buffer views")
	}
	if colAcc.Count != posAcc.Count {
		return nil, skipf("COLOR_0 count %d != POSITION count %d", colAcc.Count, posAcc.Count)
	}

	if prim.Indices == nil {
		return nil, skipf("primitive has no indices")
	}
	idxAcc, err := r.Accessor(*prim.Indices)
	if err != nil {
		return nil, err
	}
	if idxAcc.ComponentType != formats.ComponentUnsignedShort {
		return nil, skipf("index component type %s is not UNSIGNED_SHORT",
			formats.ComponentTypeName(idxAcc.ComponentType))
	}

	mesh := &DecodedMesh{
		MeshIndex:      meshIdx,
		PrimitiveIndex: primIdx,
		Material:       -1,
	}
	if prim.Material != nil {
		mesh.Material = *prim.Material
	}

	if err := decodePositions(r, mesh, posIdx); err != nil {
		return nil, err
	}
	if err := decodeColors(r, mesh, colIdx, colAcc.ComponentType); err != nil {
		return nil, err
	}
	if uvIdx, ok := prim.Attribute(formats.AttrTexCoord0); ok {
		if err := decodeUVs(r, mesh, uvIdx); err != nil {
			return nil, err
		}
	}
	if err := decodeIndices(r, mesh, idxAcc); err != nil {
		return nil, err
	}

	mesh.Bounds = computeBounds(mesh.Positions)
	return mesh, nil
}

func sameView(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// decodePositions reads VEC3 floats and flips Z for a left-handed target.
func decodePositions(r *Resolver, mesh *DecodedMesh, accIdx int) error {
	loc, err := r.Resolve(accIdx, DefaultPositionStride)
	if err != nil {
		return err
	}

	mesh.Positions = make([][3]float32, loc.Count())
	for n := range mesh.Positions {
		p := r.ReadVec3(loc, n)
		p[2] = -p[2]
		mesh.Positions[n] = p
	}
	return nil
}

func decodeColors(r *Resolver, mesh *DecodedMesh, accIdx, componentType int) error {
	if componentType == formats.ComponentFloat {
		loc, err := r.Resolve(accIdx, DefaultFloatColorStride)
		if err != nil {
			return err
		}
		mesh.Colors = make([][4]float32, loc.Count())
		for n := range mesh.Colors {
			mesh.Colors[n] = r.ReadVec4(loc, n)
		}
		return nil
	}

	loc, err := r.Resolve(accIdx, DefaultByteColorStride)
	if err != nil {
		return err
	}
	mesh.Colors32 = make([][4]uint8, loc.Count())
	for n := range mesh.Colors32 {
		mesh.Colors32[n] = r.ReadUByte4(loc, n)
	}
	return nil
}

// decodeUVs reads TEXCOORD_0 from its own accessor, which need not share the
// position buffer view.
func decodeUVs(r *Resolver, mesh *DecodedMesh, accIdx int) error {
	acc, err := r.Accessor(accIdx)
	if err != nil {
		return err
	}
	if acc.Type != formats.TypeVec2 || acc.ComponentType != formats.ComponentFloat {
		return skipf("TEXCOORD_0 is %s/%s, want VEC2/FLOAT",
			acc.Type, formats.ComponentTypeName(acc.ComponentType))
	}
	if acc.Count != len(mesh.Positions) {
		return skipf("TEXCOORD_0 count %d != POSITION count %d", acc.Count, len(mesh.Positions))
	}

	loc, err := r.Resolve(accIdx, DefaultUVStride)
	if err != nil {
		return err
	}
	mesh.UVs = make([][2]float32, loc.Count())
	for n := range mesh.UVs {
		mesh.UVs[n] = r.ReadVec2(loc, n)
	}
	return nil
}

// decodeIndices reads contiguous uint16 values starting at the index buffer
// view's offset. The accessor's own byteOffset and the view's byteStride are
// not applied.
func decodeIndices(r *Resolver, mesh *DecodedMesh, acc *formats.Accessor) error {
	if acc.BufferView == nil {
		return skipf("index accessor has no bufferView")
	}
	bv, err := r.View(*acc.BufferView)
	if err != nil {
		return err
	}
	if err := r.checkRange(bv.ByteOffset, indexSize, indexSize, acc.Count); err != nil {
		return skipf("indices: %v", err)
	}
	if acc.Count%3 != 0 {
		return skipf("index count %d is not a multiple of 3", acc.Count)
	}

	vertexCount := uint32(len(mesh.Positions))
	mesh.Indices = make([]uint32, acc.Count)
	for n := range mesh.Indices {
		v := uint32(r.uint16At(bv.ByteOffset + n*indexSize))
		if v >= vertexCount {
			return skipf("index %d references vertex %d of %d", n, v, vertexCount)
		}
		mesh.Indices[n] = v
	}
	return nil
}

// primitiveName names a decoded primitive after its mesh.
func primitiveName(mesh *formats.Mesh, meshIdx, primIdx int) string {
	name := mesh.Name
	if name == "" {
		name = fmt.Sprintf("mesh %d", meshIdx)
	}
	if len(mesh.Primitives) > 1 {
		name = fmt.Sprintf("%s/%d", name, primIdx)
	}
	return name
}
