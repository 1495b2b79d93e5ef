// Package formats provides parsers for the binary glTF (GLB) container and its JSON manifest.
package formats

// Note: the GLB container framer lives in glb.go
// Note: the glTF manifest model lives in gltf.go
