package importer

import "fmt"

// Emit hands a decoded plan to a SceneBuilder: textures, then materials, then
// the container hierarchy with meshes attached. Builder failures are wrapped
// in ErrBuilder; the builder decides whether to roll back what it created.
func Emit(plan *Plan, b SceneBuilder) (*Report, error) {
	e := &emitter{plan: plan, b: b}
	if err := e.run(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuilder, err)
	}
	return e.report, nil
}

type emitter struct {
	plan   *Plan
	b      SceneBuilder
	report *Report

	textures  []Handle
	materials []Handle
}

func (e *emitter) run() error {
	plan := e.plan
	e.report = &Report{
		Asset:   plan.Asset,
		Scenes:  len(plan.Scenes),
		Meshes:  plan.Meshes,
		Skipped: plan.Skipped,
	}

	e.textures = make([]Handle, len(plan.Textures))
	for i, src := range plan.Textures {
		if src == nil {
			continue
		}
		h, err := e.b.CreateTexture(src)
		if err != nil {
			return fmt.Errorf("texture %d: %w", i, err)
		}
		if err := e.b.Register(h); err != nil {
			return err
		}
		e.textures[i] = h
		e.report.Textures++
	}

	e.materials = make([]Handle, len(plan.Materials))
	for i, src := range plan.Materials {
		var tex Handle
		if src.Texture >= 0 {
			tex = e.textures[src.Texture]
		}
		h, err := e.b.CreateMaterial(src, tex)
		if err != nil {
			return fmt.Errorf("material %d: %w", i, err)
		}
		if err := e.b.Register(h); err != nil {
			return err
		}
		e.materials[i] = h
		e.report.Materials++
	}

	root, err := e.b.CreateContainer("importRoot")
	if err != nil {
		return err
	}
	if err := e.b.Register(root); err != nil {
		return err
	}
	if err := e.b.SetMainObject(root); err != nil {
		return err
	}
	e.report.Root = root

	for _, sp := range plan.Scenes {
		sceneObj, err := e.b.CreateContainer(sp.Name)
		if err != nil {
			return err
		}
		for _, np := range sp.Roots {
			child, err := e.emitNode(np)
			if err != nil {
				return err
			}
			if err := e.b.SetParent(child, sceneObj); err != nil {
				return err
			}
		}
		if err := e.b.SetParent(sceneObj, root); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) emitNode(np *NodePlan) (Handle, error) {
	obj, err := e.b.CreateContainer(np.Name)
	if err != nil {
		return nil, err
	}
	e.report.Nodes++

	for _, cp := range np.Children {
		child, err := e.emitNode(cp)
		if err != nil {
			return nil, err
		}
		if err := e.b.SetParent(child, obj); err != nil {
			return nil, err
		}
	}

	if np.Mesh >= 0 {
		if err := e.emitMesh(obj, np); err != nil {
			return nil, err
		}
	}
	return obj, nil
}

// emitMesh attaches a node's primitives. A mesh declaring a single primitive
// is attached to the node's own container; otherwise a group container holds
// one child container per decoded primitive.
func (e *emitter) emitMesh(obj Handle, np *NodePlan) error {
	target := obj
	if np.Declared > 1 {
		name := np.MeshName
		if name == "" {
			name = fmt.Sprintf("mesh %d", np.Mesh)
		}
		group, err := e.b.CreateContainer(name)
		if err != nil {
			return err
		}
		if err := e.b.SetParent(group, obj); err != nil {
			return err
		}
		target = group
	}

	for _, dm := range np.Primitives {
		mesh, err := e.b.CreateMesh(dm)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", dm.MeshIndex, dm.PrimitiveIndex, err)
		}
		if err := e.b.Register(mesh); err != nil {
			return err
		}

		var mat Handle
		if dm.HasMaterial() {
			mat = e.materials[dm.Material]
		}

		holder := target
		if np.Declared > 1 {
			holder, err = e.b.CreateContainer(fmt.Sprintf("primitive %d", dm.PrimitiveIndex))
			if err != nil {
				return err
			}
			if err := e.b.SetParent(holder, target); err != nil {
				return err
			}
		}
		if err := e.b.AttachMesh(holder, mesh, mat); err != nil {
			return err
		}
	}
	return nil
}
