package scenegraph

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/midgard-glb/internal/importer"
)

// Builder errors.
var (
	ErrInvalidHandle = errors.New("invalid scene handle")
	ErrCycle         = errors.New("parenting would create a cycle")
	ErrMainObjectSet = errors.New("main object already set")
)

// Options configures a Builder.
type Options struct {
	// DecodeTextures decodes embedded image bytes into image.Image.
	DecodeTextures bool
	// Logger receives texture decode warnings. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Builder implements importer.SceneBuilder on plain Go values.
type Builder struct {
	opts     Options
	log      *zap.Logger
	registry *Registry
	main     *Object
	nextID   int
}

var _ importer.SceneBuilder = (*Builder)(nil)

// NewBuilder creates a builder.
func NewBuilder(opts Options) *Builder {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		opts:     opts,
		log:      log,
		registry: NewRegistry(),
	}
}

// Main returns the import root, or nil before SetMainObject.
func (b *Builder) Main() *Object {
	return b.main
}

// Registry returns the registered outputs.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Discard drops everything the builder created. Call it after a failed import.
func (b *Builder) Discard() {
	b.registry.Clear()
	b.main = nil
	b.nextID = 0
}

// CreateTexture stores the image bytes and optionally decodes them. Bytes in
// an unknown format produce a texture with a nil Image.
func (b *Builder) CreateTexture(src *importer.TextureSource) (importer.Handle, error) {
	tex := &Texture{
		Name:     src.Name,
		MimeType: src.MimeType,
		Data:     src.Data,
	}
	if tex.Name == "" {
		tex.Name = fmt.Sprintf("texture %d", src.Index)
	}

	if b.opts.DecodeTextures {
		img, format, err := image.Decode(bytes.NewReader(src.Data))
		if err != nil {
			b.log.Warn("texture not decoded",
				zap.String("texture", tex.Name),
				zap.String("mimeType", src.MimeType),
				zap.Error(err))
		} else {
			tex.Image = img
			tex.Format = format
			b.log.Debug("texture decoded",
				zap.String("texture", tex.Name),
				zap.String("format", format),
				zap.Int("width", tex.Width()),
				zap.Int("height", tex.Height()))
		}
	}
	return tex, nil
}

// CreateMaterial creates a material using the opaque or blended shader.
func (b *Builder) CreateMaterial(src *importer.MaterialSource, texture importer.Handle) (importer.Handle, error) {
	mat := &Material{
		Name:        src.Name,
		Kind:        src.Kind,
		Shader:      ShaderOpaque,
		BaseColor:   src.BaseColor,
		DoubleSided: src.DoubleSided,
	}
	if mat.Name == "" {
		mat.Name = fmt.Sprintf("material %d", src.Index)
	}
	if src.Kind == importer.MaterialBlended {
		mat.Shader = ShaderBlended
	}

	if texture != nil {
		tex, ok := texture.(*Texture)
		if !ok {
			return nil, fmt.Errorf("%w: texture is %T", ErrInvalidHandle, texture)
		}
		mat.Texture = tex
	}
	return mat, nil
}

// CreateContainer creates an empty object.
func (b *Builder) CreateContainer(name string) (importer.Handle, error) {
	b.nextID++
	return &Object{ID: b.nextID, Name: name}, nil
}

// SetParent moves child under parent.
func (b *Builder) SetParent(child, parent importer.Handle) error {
	c, err := asObject(child)
	if err != nil {
		return err
	}
	p, err := asObject(parent)
	if err != nil {
		return err
	}
	if c.isAncestor(p) {
		return fmt.Errorf("%w: %q under %q", ErrCycle, c.Name, p.Name)
	}

	c.detach()
	c.Parent = p
	p.Children = append(p.Children, c)
	return nil
}

// CreateMesh converts decoded geometry into a mesh resource.
func (b *Builder) CreateMesh(src *importer.DecodedMesh) (importer.Handle, error) {
	return newMesh(src), nil
}

// AttachMesh makes an object render a mesh.
func (b *Builder) AttachMesh(container, mesh, material importer.Handle) error {
	obj, err := asObject(container)
	if err != nil {
		return err
	}
	m, ok := mesh.(*Mesh)
	if !ok {
		return fmt.Errorf("%w: mesh is %T", ErrInvalidHandle, mesh)
	}
	obj.Mesh = m

	if material != nil {
		mat, ok := material.(*Material)
		if !ok {
			return fmt.Errorf("%w: material is %T", ErrInvalidHandle, material)
		}
		obj.Material = mat
	}
	return nil
}

// Register records a resource as a persistent output.
func (b *Builder) Register(resource importer.Handle) error {
	_, err := b.registry.Add(resource)
	return err
}

// SetMainObject marks the import root.
func (b *Builder) SetMainObject(root importer.Handle) error {
	obj, err := asObject(root)
	if err != nil {
		return err
	}
	if b.main != nil {
		return ErrMainObjectSet
	}
	b.main = obj
	return nil
}

func asObject(h importer.Handle) (*Object, error) {
	obj, ok := h.(*Object)
	if !ok || obj == nil {
		return nil, fmt.Errorf("%w: want object, got %T", ErrInvalidHandle, h)
	}
	return obj, nil
}
