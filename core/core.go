// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

// Destroyable is anything holding external resources that
// need to be released explicitly.
type Destroyable interface {
	Destroy()
}

// Renderer describes the rendering machinery.
// It's created only with internal values set,
// it needs to be created with Create() before use.
type Renderer interface {
	// Create acquires every resource needed to present frames
	Create() error

	// Render presents the next frame
	Render() error

	// Destroy releases all acquired resources, after which
	// the renderer can not be used again
	Destroy() error
}

// RendererState is the lifecycle state of a renderer
type RendererState int

// Renderer states, transitions only go forward
const (
	StateUninitialized RendererState = iota
	StateInitialized
	StateDestroyed
)

func (s RendererState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (t ShaderType) String() string {
	switch t {
	case VertexShaderType:
		return "vertex"
	case FragmentShaderType:
		return "fragment"
	}
	return "unknown"
}
