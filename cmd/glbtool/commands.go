package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-glb/internal/config"
	"github.com/Faultbox/midgard-glb/internal/importer"
	"github.com/Faultbox/midgard-glb/internal/logger"
	"github.com/Faultbox/midgard-glb/internal/scenegraph"
	"github.com/Faultbox/midgard-glb/pkg/formats"
)

// loaded is a framed and parsed GLB file.
type loaded struct {
	path string
	glb  *formats.GLB
	doc  *formats.GLTF
}

func (c *command) load(path string) (*loaded, error) {
	if limit := c.cfg.MaxFileSize(); limit > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if info.Size() > limit {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", importer.ErrFileTooLarge, path, info.Size(), limit)
		}
	}

	glb, err := formats.ParseGLBFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := formats.ParseGLTF([]byte(glb.JSON))
	if err != nil {
		return nil, err
	}
	c.log.Debug("file loaded",
		zap.String("file", path),
		zap.Int("json", len(glb.JSON)),
		zap.Int("bin", len(glb.BIN)))
	return &loaded{path: path, glb: glb, doc: doc}, nil
}

func (c *command) importerOptions() importer.Options {
	return importer.Options{
		Logger:      logger.Named("importer"),
		MaxFileSize: c.cfg.MaxFileSize(),
	}
}

func (c *command) decode(l *loaded) (*importer.Plan, error) {
	return importer.DecodeDocument(l.doc, l.glb.BIN, c.importerOptions())
}

// build imports a file into a fresh scene graph.
func (c *command) build(path string) (*scenegraph.Builder, *importer.Report, error) {
	b := scenegraph.NewBuilder(scenegraph.Options{
		DecodeTextures: c.cfg.Import.DecodeTextures,
		Logger:         logger.Named("scenegraph"),
	})
	report, err := importer.ImportFile(path, b, c.importerOptions())
	if err != nil {
		b.Discard()
		return nil, nil, err
	}
	c.log.Info("import finished",
		zap.String("file", path),
		zap.Int("nodes", report.Nodes),
		zap.Int("meshes", len(report.Meshes)),
		zap.Int("skippedPrimitives", report.SkippedPrimitives()),
		zap.Int("skippedTextures", report.SkippedTextures()))
	return b, report, nil
}

func cmdInfo(args []string, stdout, stderr io.Writer) error {
	c, flags := newCommand("info", stdout, stderr)
	if err := c.parse(args, flags, 1, "info <file.glb>"); err != nil {
		return err
	}
	defer logger.Sync()

	l, err := c.load(c.fs.Arg(0))
	if err != nil {
		return err
	}
	info := newFileInfo(l.path, l.glb, l.doc)

	if c.cfg.Output.Format == config.FormatYAML {
		return writeYAML(stdout, info)
	}

	fmt.Fprintf(stdout, "File:        %s\n", info.File)
	fmt.Fprintf(stdout, "GLB version: %d\n", info.Version)
	fmt.Fprintf(stdout, "Length:      %d bytes\n", info.Length)
	fmt.Fprintf(stdout, "JSON chunk:  %d bytes\n", info.JSONBytes)
	if info.HasBIN {
		fmt.Fprintf(stdout, "BIN chunk:   %d bytes\n", info.BINBytes)
	} else {
		fmt.Fprintln(stdout, "BIN chunk:   none")
	}
	if info.SkippedChunks > 0 {
		fmt.Fprintf(stdout, "Skipped:     %d unknown chunks\n", info.SkippedChunks)
	}
	fmt.Fprintf(stdout, "Asset:       %s (%s)\n", info.Asset.Version, info.Asset.Generator)
	fmt.Fprintln(stdout)

	n := info.Counts
	fmt.Fprintln(stdout, "Manifest:")
	if info.DefaultScene >= 0 {
		fmt.Fprintf(stdout, "  %-12s %d (default %d)\n", "scenes", n.Scenes, info.DefaultScene)
	} else {
		fmt.Fprintf(stdout, "  %-12s %d\n", "scenes", n.Scenes)
	}
	fmt.Fprintf(stdout, "  %-12s %d\n", "nodes", n.Nodes)
	fmt.Fprintf(stdout, "  %-12s %d (%d primitives)\n", "meshes", n.Meshes, n.Primitives)
	fmt.Fprintf(stdout, "  %-12s %d\n", "materials", n.Materials)
	fmt.Fprintf(stdout, "  %-12s %d\n", "textures", n.Textures)
	fmt.Fprintf(stdout, "  %-12s %d\n", "images", n.Images)
	fmt.Fprintf(stdout, "  %-12s %d\n", "accessors", n.Accessors)
	fmt.Fprintf(stdout, "  %-12s %d\n", "bufferViews", n.BufferViews)
	return nil
}

func cmdTree(args []string, stdout, stderr io.Writer) error {
	c, flags := newCommand("tree", stdout, stderr)
	find := c.fs.String("find", "", "Print only the subtree of the first object with this name")
	if err := c.parse(args, flags, 1, "tree [-find name] <file.glb>"); err != nil {
		return err
	}
	defer logger.Sync()

	b, _, err := c.build(c.fs.Arg(0))
	if err != nil {
		return err
	}

	root := b.Main()
	if *find != "" {
		if root = root.Find(*find); root == nil {
			return fmt.Errorf("no object named %q", *find)
		}
	}

	if c.cfg.Output.Format == config.FormatYAML {
		return writeYAML(stdout, objectTree(root))
	}

	if *find != "" {
		fmt.Fprintf(stdout, "Path: %s\n", root.Path())
	}
	root.Walk(func(obj *scenegraph.Object, depth int) bool {
		fmt.Fprintf(stdout, "%s%s%s\n", strings.Repeat("  ", depth), obj.Name, describeObject(obj))
		return true
	})
	return nil
}

func describeObject(obj *scenegraph.Object) string {
	if obj.Mesh == nil {
		return ""
	}
	s := fmt.Sprintf(" [%s: %d tris", obj.Mesh.Name, obj.Mesh.TriangleCount())
	if obj.Material != nil {
		s += fmt.Sprintf(", %s %s", obj.Material.Kind, obj.Material.Name)
		if obj.Material.Texture != nil {
			s += " +" + obj.Material.Texture.Name
		}
	}
	return s + "]"
}

func objectTree(obj *scenegraph.Object) treeNode {
	n := treeNode{Name: obj.Name}
	if obj.Mesh != nil {
		n.Mesh = obj.Mesh.Name
	}
	for _, c := range obj.Children {
		n.Children = append(n.Children, objectTree(c))
	}
	return n
}

func cmdMeshes(args []string, stdout, stderr io.Writer) error {
	c, flags := newCommand("meshes", stdout, stderr)
	if err := c.parse(args, flags, 1, "meshes <file.glb>"); err != nil {
		return err
	}
	defer logger.Sync()

	l, err := c.load(c.fs.Arg(0))
	if err != nil {
		return err
	}
	plan, err := c.decode(l)
	if err != nil {
		return err
	}

	meshes := make([]meshInfo, 0, len(plan.Meshes))
	for _, m := range plan.Meshes {
		meshes = append(meshes, newMeshInfo(m))
	}
	skipped := make([]skipInfo, 0, len(plan.Skipped))
	for _, s := range plan.Skipped {
		skipped = append(skipped, newSkipInfo(s))
	}

	if c.cfg.Output.Format == config.FormatYAML {
		return writeYAML(stdout, struct {
			Meshes  []meshInfo `yaml:"meshes"`
			Skipped []skipInfo `yaml:"skipped,omitempty"`
		}{meshes, skipped})
	}

	fmt.Fprintf(stdout, "%-24s %8s %9s %-6s %-4s %s\n", "NAME", "VERTICES", "TRIANGLES", "COLORS", "UVS", "MATERIAL")
	for _, m := range meshes {
		uvs := "-"
		if m.UVs {
			uvs = "yes"
		}
		fmt.Fprintf(stdout, "%-24s %8d %9d %-6s %-4s %d\n", m.Name, m.Vertices, m.Triangles, m.Colors, uvs, m.Material)
	}

	if len(plan.Skipped) > 0 {
		fmt.Fprintf(stdout, "\nSkipped (%d):\n", len(plan.Skipped))
		for _, s := range plan.Skipped {
			fmt.Fprintf(stdout, "  %s\n", s)
		}
	}
	return nil
}

func cmdDump(args []string, stdout, stderr io.Writer) error {
	c, flags := newCommand("dump", stdout, stderr)
	if err := c.parse(args, flags, 1, "dump <file.glb>"); err != nil {
		return err
	}
	defer logger.Sync()

	l, err := c.load(c.fs.Arg(0))
	if err != nil {
		return err
	}
	plan, err := c.decode(l)
	if err != nil {
		return err
	}
	return writeYAML(stdout, newDumpDoc(newFileInfo(l.path, l.glb, l.doc), plan))
}

func cmdTextures(args []string, stdout, stderr io.Writer) error {
	c, flags := newCommand("textures", stdout, stderr)
	outDir := c.fs.String("o", "", "Extract textures into this directory")
	names := c.fs.String("name", "", "Comma-separated texture names to select (default all)")
	if err := c.parse(args, flags, 1, "textures [-o dir] [-name a,b] <file.glb>"); err != nil {
		return err
	}
	defer logger.Sync()

	b, _, err := c.build(c.fs.Arg(0))
	if err != nil {
		return err
	}

	selected, err := selectTextures(b.Registry(), *names)
	if err != nil {
		return err
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			return err
		}
	}

	var textures []textureInfo
	for _, tex := range selected {
		info := textureInfo{
			Name:     tex.Name,
			MimeType: tex.MimeType,
			Format:   tex.Format,
			Width:    tex.Width(),
			Height:   tex.Height(),
			Bytes:    len(tex.Data),
		}
		if *outDir != "" {
			info.File = filepath.Join(*outDir, textureFileName(len(textures), tex))
			if err := os.WriteFile(info.File, tex.Data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", info.File, err)
			}
			c.log.Debug("texture extracted", zap.String("file", info.File))
		}
		textures = append(textures, info)
	}

	if c.cfg.Output.Format == config.FormatYAML {
		return writeYAML(stdout, textures)
	}

	for _, t := range textures {
		size := "-"
		if t.Width > 0 {
			size = fmt.Sprintf("%dx%d", t.Width, t.Height)
		}
		fmt.Fprintf(stdout, "%-24s %-12s %-10s %8d", t.Name, t.MimeType, size, t.Bytes)
		if t.File != "" {
			fmt.Fprintf(stdout, "  -> %s", t.File)
		}
		fmt.Fprintln(stdout)
	}
	fmt.Fprintf(stderr, "(%d textures)\n", len(textures))
	return nil
}

// selectTextures returns the registered textures in registration order, or
// the named ones when names is not empty.
func selectTextures(reg *scenegraph.Registry, names string) ([]*scenegraph.Texture, error) {
	var out []*scenegraph.Texture
	if names == "" {
		for _, e := range reg.Entries() {
			if tex, ok := e.Resource.(*scenegraph.Texture); ok {
				out = append(out, tex)
			}
		}
		return out, nil
	}

	for _, name := range strings.Split(names, ",") {
		res, ok := reg.Get("texture/" + strings.TrimSpace(name))
		if !ok {
			continue
		}
		out = append(out, res.(*scenegraph.Texture))
	}
	hits, misses := reg.Stats()
	logger.Debug("texture lookup", zap.Int("found", hits), zap.Int("missing", misses))
	if len(out) == 0 {
		return nil, fmt.Errorf("no texture named %q", names)
	}
	return out, nil
}

// textureFileName builds a safe file name with an extension from the MIME type.
func textureFileName(i int, tex *scenegraph.Texture) string {
	base := strings.TrimSuffix(filepath.Base(tex.Name), filepath.Ext(tex.Name))
	base = strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '\\', '/':
			return '_'
		}
		return r
	}, base)
	if base == "" || base == "." {
		base = "texture"
	}
	return fmt.Sprintf("%02d_%s%s", i, base, mimeExt(tex.MimeType, tex.Format))
}

func mimeExt(mimeType, format string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/x-tga", "image/tga":
		return ".tga"
	}
	if format != "" {
		return "." + format
	}
	return ".bin"
}

func cmdConfig(args []string, stdout, stderr io.Writer) error {
	c, flags := newCommand("config", stdout, stderr)
	outPath := c.fs.String("o", "", "Write the effective config to this path")
	save := c.fs.Bool("save", false, "Write the effective config to the user config directory")
	if err := c.parse(args, flags, 0, "config [-o path | -save]"); err != nil {
		return err
	}
	defer logger.Sync()

	switch {
	case *outPath != "":
		if err := c.cfg.SaveTo(*outPath); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote %s\n", *outPath)
	case *save:
		path, err := c.cfg.Save()
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Wrote %s\n", path)
	default:
		data, err := c.cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = stdout.Write(data)
		return err
	}
	return nil
}
