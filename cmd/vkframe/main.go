// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"time"

	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/vkframe/core"
)

func init() {
	runtime.LockOSThread()
}

var (
	envFile      = flag.String("env", "", "Read configuration from the given .env file")
	debug        = flag.Bool("vkdbg", false, "Load Vulkan validation layers")
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	memProfile   = flag.String("memprof", "", "Profile memory usage into a file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
)

func main() {
	flag.Parse()

	cfg, err := core.LoadConfiguration(core.DefaultConfiguration(), *envFile)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if *debug {
		cfg.Instance.DebugMode = true
	}

	logger, err := core.NewLogger(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatal("invalid log level")
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("vkframe exited")
	}
}

func run(cfg core.Configuration, logger *log.Logger) error {
	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			return err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			return err
		}
		if err := trace.Start(f); err != nil {
			return err
		}
		defer trace.Stop()
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return errors.Wrap(err, "sdl.Init()")
	}
	defer sdl.Quit()

	if err := sdl.VulkanLoadLibrary(""); err != nil {
		return errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}
	defer sdl.VulkanUnloadLibrary()

	window, err := newWindow(cfg.Instance.ApplicationName, cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight)
	if err != nil {
		return err
	}
	defer window.Destroy()
	logNativeHost(logger)

	driver, err := core.NewVulkanDriver(
		sdl.VulkanGetVkGetInstanceProcAddr(),
		core.NewVulkanApplicationInfo(cfg.Instance.ApplicationName),
	)
	if err != nil {
		return err
	}

	shaders, err := newShaderLoader(cfg.Shaders, logger)
	if err != nil {
		return err
	}

	renderer := core.NewVulkanRenderer(driver, window, shaders, cfg, logger)
	if err := renderer.Create(); err != nil {
		return err
	}
	defer func() {
		if err := renderer.Destroy(); err != nil {
			logger.WithError(err).Error("renderer destroy")
		}
	}()

	if err := loop(renderer, core.NewTime(cfg.Time), logger); err != nil {
		return err
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return err
		}
	}
	return nil
}

// newShaderLoader reads shaders from the configured archive or directory,
// falling back to the shaders bundled with the binary.
func newShaderLoader(cfg core.ShaderConfiguration, logger log.FieldLogger) (*core.ShaderLoader, error) {
	if cfg.Archive != "" {
		return core.NewShaderLoaderFromConfig(cfg)
	}
	if _, err := os.Stat(cfg.Directory); err == nil {
		return core.NewShaderLoaderFromConfig(cfg)
	}

	logger.WithField("directory", cfg.Directory).Info("shader directory missing, using bundled shaders")
	box := packr.NewBox("./shaders")
	return core.NewShaderLoader(core.BoxSource{Box: box}, "", map[core.ShaderType]string{
		core.VertexShaderType:   cfg.VertexExtension,
		core.FragmentShaderType: cfg.FragmentExtension,
	}), nil
}

// loop renders at the configured rate and polls window events
// until the window is closed or escape is pressed.
func loop(renderer core.Renderer, timeService *core.Time, logger log.FieldLogger) error {
	defer timeService.Stop()

	var frames int
	report := time.NewTicker(time.Second)
	defer report.Stop()

	for {
		select {
		case <-report.C:
			logger.WithFields(log.Fields{
				"frames":   frames,
				"cgoCalls": runtime.NumCgoCall(),
			}).Debug("frame count")
			frames = 0
		case <-timeService.FpsTicker().C:
			if err := renderer.Render(); err != nil {
				return err
			}
			frames++
		case <-timeService.EventTicker().C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						return nil
					}
				case *sdl.QuitEvent:
					return nil
				}
			}
		}
	}
}
