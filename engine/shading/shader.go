package shading

import (
	_ "embed"
)

// Source is the WGSL module shared by all three stages. Embedded so
// pipeline creation never touches the filesystem.
//
//go:embed assets/wboit.wgsl
var Source string

// ShaderType identifies whether a shader entry point runs in the vertex
// or the fragment stage of a render pipeline.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
type shader struct {
	key        string
	shaderType ShaderType
	entryPoint string
}

// Shader describes one entry point of the embedded WGSL module. It exposes
// the shader's unique key, source code, type, and entry point for pipeline
// creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and labels.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL source code of the module containing this entry point.
	//
	// Returns:
	//   - string: the WGSL source code
	Source() string

	// Type retrieves the shader's stage type.
	//
	// Returns:
	//   - ShaderType: vertex or fragment
	Type() ShaderType

	// EntryPoint retrieves the WGSL entry point name for this shader.
	//
	// Returns:
	//   - string: the entry point name
	EntryPoint() string
}

var _ Shader = &shader{}

func (s *shader) Key() string        { return s.key }
func (s *shader) Source() string     { return Source }
func (s *shader) Type() ShaderType   { return s.shaderType }
func (s *shader) EntryPoint() string { return s.entryPoint }

// VertexShader returns the shared geometry vertex shader (vs_main), used
// by both the opaque and the accumulation stage.
//
// Returns:
//   - Shader: the vs_main entry point
func VertexShader() Shader {
	return &shader{key: "wboit_vertex", shaderType: ShaderTypeVertex, entryPoint: "vs_main"}
}

// OpaqueFragmentShader returns the opaque stage's fragment shader
// (fs_opaque_main).
//
// Returns:
//   - Shader: the fs_opaque_main entry point
func OpaqueFragmentShader() Shader {
	return &shader{key: "wboit_opaque_fragment", shaderType: ShaderTypeFragment, entryPoint: "fs_opaque_main"}
}

// AccumulationFragmentShader returns the accumulation stage's fragment
// shader (fs_transparent_pass).
//
// Returns:
//   - Shader: the fs_transparent_pass entry point
func AccumulationFragmentShader() Shader {
	return &shader{key: "wboit_accumulation_fragment", shaderType: ShaderTypeFragment, entryPoint: "fs_transparent_pass"}
}

// CompositeVertexShader returns the composite stage's vertex shader
// (vs_composite_pass), which emits the full-screen quad from the implicit
// vertex index with no vertex buffers bound.
//
// Returns:
//   - Shader: the vs_composite_pass entry point
func CompositeVertexShader() Shader {
	return &shader{key: "wboit_composite_vertex", shaderType: ShaderTypeVertex, entryPoint: "vs_composite_pass"}
}

// CompositeFragmentShader returns the composite stage's fragment shader
// (fs_composite_pass).
//
// Returns:
//   - Shader: the fs_composite_pass entry point
func CompositeFragmentShader() Shader {
	return &shader{key: "wboit_composite_fragment", shaderType: ShaderTypeFragment, entryPoint: "fs_composite_pass"}
}
