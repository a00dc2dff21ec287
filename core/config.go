// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"strconv"
	"strings"
	"time"

	vk "github.com/devblok/vulkan"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Instance InstanceConfiguration
	Renderer RendererConfiguration
	Shaders  ShaderConfiguration

	LogLevel string
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the delay between polling
	// for window events in milliseconds
	EventPollDelay int
}

// InstanceConfiguration is used to configure the graphics API instance
type InstanceConfiguration struct {
	ApplicationName string

	// DebugMode loads validation layers
	DebugMode  bool
	Extensions []string
	Layers     []string
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	DeviceExtensions []string

	ScreenWidth  uint32
	ScreenHeight uint32

	// FenceTimeout is how long a single wait on a fence may
	// block before it's retried
	FenceTimeout time.Duration

	// Names of the shaders to create modules for,
	// empty names are skipped
	VertexShader   string
	FragmentShader string
}

// ShaderConfiguration tells where compiled shaders are read from
type ShaderConfiguration struct {
	Directory         string
	VertexExtension   string
	FragmentExtension string

	// Archive is an optional kar archive to read shaders from
	// instead of the filesystem
	Archive string
}

// DefaultConfiguration returns a configuration that works
// on any machine with a Vulkan capable device.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  5,
		},
		Instance: InstanceConfiguration{
			ApplicationName: "vkframe",
		},
		Renderer: RendererConfiguration{
			DeviceExtensions: []string{vk.KhrSwapchainExtensionName},
			ScreenWidth:      640,
			ScreenHeight:     480,
			FenceTimeout:     time.Second,
		},
		Shaders: ShaderConfiguration{
			Directory:         "./shaders",
			VertexExtension:   ".vert.spv",
			FragmentExtension: ".frag.spv",
		},
		LogLevel: "info",
	}
}

// Environment keys read by LoadConfiguration
const (
	EnvApplicationName    = "VKFRAME_APP_NAME"
	EnvDebug              = "VKFRAME_DEBUG"
	EnvInstanceExtensions = "VKFRAME_INSTANCE_EXTENSIONS"
	EnvLayers             = "VKFRAME_LAYERS"
	EnvDeviceExtensions   = "VKFRAME_DEVICE_EXTENSIONS"
	EnvWidth              = "VKFRAME_WIDTH"
	EnvHeight             = "VKFRAME_HEIGHT"
	EnvFenceTimeout       = "VKFRAME_FENCE_TIMEOUT"
	EnvVertexShader       = "VKFRAME_VERTEX_SHADER"
	EnvFragmentShader     = "VKFRAME_FRAGMENT_SHADER"
	EnvShaderDirectory    = "VKFRAME_SHADER_DIR"
	EnvShaderArchive      = "VKFRAME_SHADER_ARCHIVE"
	EnvVertexExtension    = "VKFRAME_VERTEX_EXT"
	EnvFragmentExtension  = "VKFRAME_FRAGMENT_EXT"
	EnvFramesPerSecond    = "VKFRAME_FPS"
	EnvEventPollDelay     = "VKFRAME_EVENT_POLL_DELAY"
	EnvLogLevel           = "VKFRAME_LOG_LEVEL"
)

// LoadConfiguration overrides base with values from the environment.
// When envFile is not empty it's read as a dotenv file, its values are
// used for keys not set in the process environment.
//
// The environment is envy's view of it, which includes a .env file in
// the working directory loaded at program start. Keys set there win
// over envFile as well.
func LoadConfiguration(base Configuration, envFile string) (Configuration, error) {
	env := settings{}
	if envFile != "" {
		file, err := godotenv.Read(envFile)
		if err != nil {
			return base, errors.Wrapf(err, "read %s", envFile)
		}
		env.file = file
	}

	cfg := base
	env.str(EnvApplicationName, &cfg.Instance.ApplicationName)
	env.list(EnvInstanceExtensions, &cfg.Instance.Extensions)
	env.list(EnvLayers, &cfg.Instance.Layers)
	env.list(EnvDeviceExtensions, &cfg.Renderer.DeviceExtensions)
	env.str(EnvVertexShader, &cfg.Renderer.VertexShader)
	env.str(EnvFragmentShader, &cfg.Renderer.FragmentShader)
	env.str(EnvShaderDirectory, &cfg.Shaders.Directory)
	env.str(EnvShaderArchive, &cfg.Shaders.Archive)
	env.str(EnvVertexExtension, &cfg.Shaders.VertexExtension)
	env.str(EnvFragmentExtension, &cfg.Shaders.FragmentExtension)
	env.str(EnvLogLevel, &cfg.LogLevel)
	env.boolean(EnvDebug, &cfg.Instance.DebugMode)
	env.uint32(EnvWidth, &cfg.Renderer.ScreenWidth)
	env.uint32(EnvHeight, &cfg.Renderer.ScreenHeight)
	env.duration(EnvFenceTimeout, &cfg.Renderer.FenceTimeout)
	env.integer(EnvFramesPerSecond, &cfg.Time.FramesPerSecond)
	env.integer(EnvEventPollDelay, &cfg.Time.EventPollDelay)

	if env.err != nil {
		return base, env.err
	}
	return cfg, nil
}

// settings resolves keys from the process environment first,
// then from the dotenv file. The first parse error sticks.
type settings struct {
	file map[string]string
	err  error
}

func (s *settings) lookup(key string) (string, bool) {
	if v, err := envy.MustGet(key); err == nil {
		return v, true
	}
	v, ok := s.file[key]
	return v, ok
}

func (s *settings) str(key string, dst *string) {
	if v, ok := s.lookup(key); ok {
		*dst = v
	}
}

func (s *settings) list(key string, dst *[]string) {
	v, ok := s.lookup(key)
	if !ok {
		return
	}
	items := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	*dst = items
}

func (s *settings) boolean(key string, dst *bool) {
	v, ok := s.lookup(key)
	if !ok || s.err != nil {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		s.err = errors.Wrap(err, key)
		return
	}
	*dst = b
}

func (s *settings) integer(key string, dst *int) {
	v, ok := s.lookup(key)
	if !ok || s.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		s.err = errors.Wrap(err, key)
		return
	}
	*dst = n
}

func (s *settings) uint32(key string, dst *uint32) {
	v, ok := s.lookup(key)
	if !ok || s.err != nil {
		return
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		s.err = errors.Wrap(err, key)
		return
	}
	*dst = uint32(n)
}

func (s *settings) duration(key string, dst *time.Duration) {
	v, ok := s.lookup(key)
	if !ok || s.err != nil {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		s.err = errors.Wrap(err, key)
		return
	}
	*dst = d
}
