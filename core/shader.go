// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"os"
	"path"
	"path/filepath"

	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"

	"github.com/devblok/vkframe/utility/kar"
)

// ShaderSource reads compiled shader files by slash separated path.
type ShaderSource interface {
	ReadFile(name string) ([]byte, error)
}

// DirSource reads shaders straight from the filesystem.
type DirSource struct{}

// ReadFile implements ShaderSource
func (DirSource) ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.FromSlash(name))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrShaderNotFound, name)
	}
	return data, err
}

// BoxSource reads shaders bundled into the binary with packr.
type BoxSource struct {
	Box packr.Box
}

// ReadFile implements ShaderSource
func (s BoxSource) ReadFile(name string) ([]byte, error) {
	if !s.Box.Has(name) {
		return nil, errors.Wrap(ErrShaderNotFound, name)
	}
	return s.Box.Find(name)
}

// ArchiveSource reads shaders packed into a kar archive.
type ArchiveSource struct {
	Archive *kar.Archive
}

// ReadFile implements ShaderSource
func (s ArchiveSource) ReadFile(name string) ([]byte, error) {
	if !s.Archive.Has(name) {
		return nil, errors.Wrap(ErrShaderNotFound, name)
	}
	return s.Archive.ReadAll(name)
}

// ShaderCode is compiled shader bytecode read into memory.
type ShaderCode struct {
	data     []byte
	released bool
}

// Len returns the size of the code in bytes.
func (s *ShaderCode) Len() int {
	return len(s.data)
}

// Bytes returns the code.
func (s *ShaderCode) Bytes() []byte {
	return s.data
}

// Words returns the code as the uint32 slice that shader module
// creation expects. It shares memory with Bytes.
func (s *ShaderCode) Words() []uint32 {
	if len(s.data) == 0 {
		return nil
	}
	return SliceUint32(s.data)
}

// Release drops the code. It's a precondition violation to release
// code that is empty or already released.
func (s *ShaderCode) Release() error {
	if s.released {
		return precondition("shader code released twice")
	}
	if len(s.data) == 0 {
		return precondition("releasing empty shader code")
	}
	s.data = nil
	s.released = true
	return nil
}

// DefaultShaderExtensions maps shader types to the extension of their compiled files.
func DefaultShaderExtensions() map[ShaderType]string {
	return map[ShaderType]string{
		VertexShaderType:   ".vert.spv",
		FragmentShaderType: ".frag.spv",
	}
}

// NewShaderLoader creates a loader reading from source. A nil source reads the filesystem.
func NewShaderLoader(source ShaderSource, directory string, extensions map[ShaderType]string) *ShaderLoader {
	if source == nil {
		source = DirSource{}
	}
	exts := make(map[ShaderType]string, len(extensions))
	for k, v := range extensions {
		exts[k] = v
	}
	return &ShaderLoader{
		source:     source,
		directory:  directory,
		extensions: exts,
	}
}

// NewShaderLoaderFromConfig creates a loader for the configured directory
// and extensions. Shaders are read from archive when one is configured.
func NewShaderLoaderFromConfig(cfg ShaderConfiguration) (*ShaderLoader, error) {
	extensions := map[ShaderType]string{
		VertexShaderType:   cfg.VertexExtension,
		FragmentShaderType: cfg.FragmentExtension,
	}
	if cfg.Archive == "" {
		return NewShaderLoader(DirSource{}, cfg.Directory, extensions), nil
	}

	ar, err := kar.OpenFile(cfg.Archive)
	if err != nil {
		return nil, errors.Wrapf(err, "open shader archive %s", cfg.Archive)
	}
	return NewShaderLoader(ArchiveSource{Archive: ar}, cfg.Directory, extensions), nil
}

// ShaderLoader reads compiled shaders by name from a directory,
// the file extension is decided by the shader type.
type ShaderLoader struct {
	source     ShaderSource
	directory  string
	extensions map[ShaderType]string
}

// Path returns the path the shader is read from.
func (l *ShaderLoader) Path(name string, kind ShaderType) (string, error) {
	ext, ok := l.extensions[kind]
	if !ok || ext == "" {
		return "", precondition("no file extension for %s shaders", kind)
	}
	return path.Join(l.directory, name+ext), nil
}

// Load reads the whole shader file. Missing, empty and files that are
// not whole 32 bit words are errors.
func (l *ShaderLoader) Load(name string, kind ShaderType) (*ShaderCode, error) {
	p, err := l.Path(name, kind)
	if err != nil {
		return nil, err
	}

	data, err := l.source.ReadFile(p)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s shader", kind)
	}
	if len(data) == 0 {
		return nil, errors.Wrap(ErrShaderEmpty, p)
	}
	if len(data)%4 != 0 {
		return nil, errors.Wrapf(ErrShaderMisaligned, "%s: %d bytes", p, len(data))
	}
	return &ShaderCode{data: data}, nil
}

// LoadVertex loads a vertex shader.
func (l *ShaderLoader) LoadVertex(name string) (*ShaderCode, error) {
	return l.Load(name, VertexShaderType)
}

// LoadFragment loads a fragment shader.
func (l *ShaderLoader) LoadFragment(name string) (*ShaderCode, error) {
	return l.Load(name, FragmentShaderType)
}
