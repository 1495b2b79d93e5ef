// Package scenegraph is an in-memory SceneBuilder. It holds the container
// hierarchy, mesh, material and texture resources produced by an import.
package scenegraph

import "strings"

// Object is a named container in the scene hierarchy.
type Object struct {
	ID       int
	Name     string
	Parent   *Object
	Children []*Object

	Mesh     *Mesh     // nil when nothing is attached
	Material *Material // nil for the default material
}

// Path returns the slash-separated names from the root down to o.
func (o *Object) Path() string {
	var parts []string
	for cur := o; cur != nil; cur = cur.Parent {
		parts = append(parts, cur.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Walk visits o and its descendants depth-first. Returning false from fn
// skips the object's children.
func (o *Object) Walk(fn func(obj *Object, depth int) bool) {
	o.walk(fn, 0)
}

func (o *Object) walk(fn func(*Object, int) bool, depth int) {
	if !fn(o, depth) {
		return
	}
	for _, c := range o.Children {
		c.walk(fn, depth+1)
	}
}

// Find returns the first descendant (or o itself) with the given name.
func (o *Object) Find(name string) *Object {
	var found *Object
	o.Walk(func(obj *Object, _ int) bool {
		if found != nil {
			return false
		}
		if obj.Name == name {
			found = obj
			return false
		}
		return true
	})
	return found
}

func (o *Object) detach() {
	if o.Parent == nil {
		return
	}
	siblings := o.Parent.Children
	for i, c := range siblings {
		if c == o {
			o.Parent.Children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	o.Parent = nil
}

// isAncestor reports whether o is candidate or one of its ancestors.
func (o *Object) isAncestor(candidate *Object) bool {
	for cur := candidate; cur != nil; cur = cur.Parent {
		if cur == o {
			return true
		}
	}
	return false
}
