package importer

import (
	"go.uber.org/zap"
)

// resolveTextures resolves every manifest texture to its embedded image bytes.
// The result is indexed like the manifest; unresolvable textures are nil.
func (imp *importer) resolveTextures() ([]*TextureSource, error) {
	doc := imp.doc
	textures := make([]*TextureSource, len(doc.Textures))

	for i := range doc.Textures {
		tex, err := imp.resolveTexture(i)
		if err != nil {
			if !IsSkip(err) {
				return nil, err
			}
			imp.skipTexture(i, err)
			continue
		}
		textures[i] = tex
	}
	return textures, nil
}

func (imp *importer) resolveTexture(i int) (*TextureSource, error) {
	doc := imp.doc
	tex := &doc.Textures[i]
	if tex.Source == nil {
		return nil, skipf("texture has no source image")
	}
	if err := checkIndex("image", *tex.Source, len(doc.Images)); err != nil {
		return nil, err
	}

	img := &doc.Images[*tex.Source]
	if img.URI != "" {
		return nil, skipf("image %d is external (%s)", *tex.Source, img.URI)
	}
	if img.BufferView == nil {
		return nil, skipf("image %d has no bufferView", *tex.Source)
	}

	bv, err := imp.resolver.View(*img.BufferView)
	if err != nil {
		return nil, err
	}
	data, err := imp.resolver.ViewBytes(bv)
	if err != nil {
		return nil, skipf("image %d: %v", *tex.Source, err)
	}

	name := tex.Name
	if name == "" {
		name = img.Name
	}
	return &TextureSource{
		Index:    i,
		Name:     name,
		MimeType: img.MimeType,
		Data:     data,
	}, nil
}

// resolveMaterials resolves every manifest material. A base color texture that
// could not be resolved leaves the material untextured.
func (imp *importer) resolveMaterials(textures []*TextureSource) ([]*MaterialSource, error) {
	doc := imp.doc
	materials := make([]*MaterialSource, len(doc.Materials))

	for i := range doc.Materials {
		m := &doc.Materials[i]
		src := &MaterialSource{
			Index:       i,
			Name:        m.Name,
			Kind:        MaterialOpaque,
			DoubleSided: m.DoubleSided,
			BaseColor:   [4]float32{1, 1, 1, 1},
			Texture:     -1,
		}
		if !m.IsOpaque() {
			src.Kind = MaterialBlended
		}
		if m.PBRMetallicRoughness != nil && m.PBRMetallicRoughness.BaseColorFactor != nil {
			src.BaseColor = *m.PBRMetallicRoughness.BaseColorFactor
		}

		if texIdx, ok := m.BaseColorTexture(); ok {
			if err := checkIndex("texture", texIdx, len(textures)); err != nil {
				return nil, err
			}
			if textures[texIdx] != nil {
				src.Texture = texIdx
			}
		}

		imp.log.Debug("material resolved",
			zap.Int("material", i),
			zap.Stringer("kind", src.Kind),
			zap.Int("texture", src.Texture))
		materials[i] = src
	}
	return materials, nil
}
