package importer

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-glb/pkg/formats"
)

// Options configures an import.
type Options struct {
	// Logger receives skip warnings and debug traces. Defaults to a no-op logger.
	Logger *zap.Logger
	// MaxFileSize limits ImportFile input in bytes (0 = unlimited).
	MaxFileSize int64
}

// Report summarizes a finished import.
type Report struct {
	Asset     formats.Asset
	Scenes    int
	Nodes     int
	Meshes    []*DecodedMesh
	Textures  int // Textures created
	Materials int // Materials created
	Skipped   []SkipRecord
	Root      Handle
}

// SkippedPrimitives returns the number of dropped primitives.
func (r *Report) SkippedPrimitives() int {
	return r.countSkipped(SkipPrimitive)
}

// SkippedTextures returns the number of dropped textures.
func (r *Report) SkippedTextures() int {
	return r.countSkipped(SkipTexture)
}

func (r *Report) countSkipped(kind SkipKind) int {
	n := 0
	for _, s := range r.Skipped {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

type importer struct {
	doc      *formats.GLTF
	resolver *Resolver
	log      *zap.Logger

	meshCache map[int][]*DecodedMesh
	meshes    []*DecodedMesh
	skipped   []SkipRecord
}

func newImporter(doc *formats.GLTF, bin []byte, opts Options) *importer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &importer{
		doc:       doc,
		resolver:  NewResolver(doc, bin),
		log:       log,
		meshCache: make(map[int][]*DecodedMesh),
	}
}

// Decode frames, parses and decodes GLB data without touching a SceneBuilder.
func Decode(data []byte, opts Options) (*Plan, error) {
	glb, err := formats.ParseGLB(data)
	if err != nil {
		return nil, err
	}
	doc, err := formats.ParseGLTF([]byte(glb.JSON))
	if err != nil {
		return nil, err
	}
	return DecodeDocument(doc, glb.BIN, opts)
}

// DecodeDocument decodes an already parsed manifest and its binary payload.
func DecodeDocument(doc *formats.GLTF, bin []byte, opts Options) (*Plan, error) {
	imp := newImporter(doc, bin, opts)

	textures, err := imp.resolveTextures()
	if err != nil {
		return nil, err
	}
	materials, err := imp.resolveMaterials(textures)
	if err != nil {
		return nil, err
	}
	scenes, err := imp.walkScenes()
	if err != nil {
		return nil, err
	}

	return &Plan{
		Asset:     doc.Asset,
		Textures:  textures,
		Materials: materials,
		Scenes:    scenes,
		Meshes:    imp.meshes,
		Skipped:   imp.skipped,
	}, nil
}

// Import decodes GLB data and materializes it through b.
func Import(data []byte, b SceneBuilder, opts Options) (*Report, error) {
	plan, err := Decode(data, opts)
	if err != nil {
		return nil, err
	}
	return Emit(plan, b)
}

// ImportFile reads a GLB file and imports it through b.
func ImportFile(path string, b SceneBuilder, opts Options) (*Report, error) {
	plan, err := DecodeFile(path, opts)
	if err != nil {
		return nil, err
	}
	return Emit(plan, b)
}

// DecodeFile reads and decodes a GLB file, enforcing opts.MaxFileSize.
func DecodeFile(path string, opts Options) (*Plan, error) {
	data, err := readFile(path, opts.MaxFileSize)
	if err != nil {
		return nil, err
	}
	return Decode(data, opts)
}

func readFile(path string, limit int64) ([]byte, error) {
	if limit > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("reading GLB file: %w", err)
		}
		if info.Size() > limit {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, path, info.Size(), limit)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading GLB file: %w", err)
	}
	return data, nil
}
