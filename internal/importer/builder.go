package importer

// Handle is an opaque reference to a resource created by a SceneBuilder.
// A nil Handle means "none".
type Handle any

// SceneBuilder turns decoded records into host scene-graph objects.
// The importer calls it in a fixed order: textures, materials, then
// containers and meshes during the graph walk.
type SceneBuilder interface {
	// CreateTexture instantiates a texture from embedded image bytes.
	CreateTexture(src *TextureSource) (Handle, error)

	// CreateMaterial instantiates an opaque or blended material. texture is
	// nil when the material has no resolvable base color texture.
	CreateMaterial(src *MaterialSource, texture Handle) (Handle, error)

	// CreateContainer creates a named, empty scene-graph container.
	CreateContainer(name string) (Handle, error)

	// SetParent places child under parent.
	SetParent(child, parent Handle) error

	// CreateMesh instantiates a mesh resource from decoded geometry.
	CreateMesh(mesh *DecodedMesh) (Handle, error)

	// AttachMesh makes container render mesh with material (which may be nil).
	AttachMesh(container, mesh, material Handle) error

	// Register records a created resource as a persistent output of the import.
	Register(resource Handle) error

	// SetMainObject marks the import's root container.
	SetMainObject(root Handle) error
}
