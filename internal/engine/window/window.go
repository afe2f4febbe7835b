// Package window opens the SDL2 window the viewer draws into and owns its
// OpenGL 4.1 core context.
package window

import (
	"fmt"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/greed/internal/config"
	"github.com/Faultbox/greed/internal/logger"
)

func init() {
	// GL calls must stay on the main thread.
	runtime.LockOSThread()
}

// glAttributes must be set before the window exists. 4.1 core is the newest
// profile macOS offers.
var glAttributes = []struct {
	name  string
	attr  sdl.GLattr
	value int
}{
	{"major version", sdl.GL_CONTEXT_MAJOR_VERSION, 4},
	{"minor version", sdl.GL_CONTEXT_MINOR_VERSION, 1},
	{"profile", sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE},
	{"double buffer", sdl.GL_DOUBLEBUFFER, 1},
	{"depth bits", sdl.GL_DEPTH_SIZE, 24},
}

// Window is an SDL2 window with a current GL context.
type Window struct {
	handle  *sdl.Window
	context sdl.GLContext
	log     *zap.Logger
}

// New opens a window sized and flagged from the graphics settings and makes
// its GL context current.
func New(title string, gfx config.GraphicsConfig) (*Window, error) {
	w := &Window{log: logger.Named("window")}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL_Init failed: %w", err)
	}
	for _, a := range glAttributes {
		if err := sdl.GLSetAttribute(a.attr, a.value); err != nil {
			sdl.Quit()
			return nil, fmt.Errorf("GL %s = %d: %w", a.name, a.value, err)
		}
	}

	handle, err := sdl.CreateWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(gfx.Width), int32(gfx.Height), flags(gfx))
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("SDL_CreateWindow failed: %w", err)
	}
	w.handle = handle

	w.context, err = handle.GLCreateContext()
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("SDL_GL_CreateContext failed: %w", err)
	}

	if err := sdl.GLSetSwapInterval(swapInterval(gfx.VSync)); err != nil {
		w.log.Warn("swap interval rejected", zap.Bool("vsync", gfx.VSync), zap.Error(err))
	}

	dw, dh := handle.GLGetDrawableSize()
	w.log.Info("window opened",
		zap.String("title", title),
		zap.Int("width", gfx.Width),
		zap.Int("height", gfx.Height),
		zap.Int32("drawable_width", dw),
		zap.Int32("drawable_height", dh),
		zap.Bool("fullscreen", gfx.Fullscreen),
		zap.Bool("vsync", gfx.VSync),
	)
	return w, nil
}

// flags maps the graphics settings onto SDL window flags. Fullscreen takes
// over the desktop mode instead of switching video modes.
func flags(gfx config.GraphicsConfig) uint32 {
	f := uint32(sdl.WINDOW_OPENGL | sdl.WINDOW_RESIZABLE | sdl.WINDOW_ALLOW_HIGHDPI)
	if gfx.Fullscreen {
		f |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	return f
}

func swapInterval(vsync bool) int {
	if vsync {
		return 1
	}
	return 0
}

// Close releases the context and the window, then shuts SDL down.
func (w *Window) Close() {
	if w.context != nil {
		sdl.GLDeleteContext(w.context)
		w.context = nil
	}
	if w.handle != nil {
		w.handle.Destroy()
		w.handle = nil
	}
	sdl.Quit()
	w.log.Info("window closed")
}

// SwapBuffers presents the back buffer.
func (w *Window) SwapBuffers() {
	w.handle.GLSwap()
}

// Size returns the window size in screen coordinates, the space mouse
// events are reported in.
func (w *Window) Size() (int, int) {
	width, height := w.handle.GetSize()
	return int(width), int(height)
}

// Aspect returns width / height of the drawable area.
func (w *Window) Aspect() float32 {
	width, height := w.handle.GLGetDrawableSize()
	if height == 0 {
		return 1
	}
	return float32(width) / float32(height)
}

// SetTitle replaces the title bar text.
func (w *Window) SetTitle(title string) {
	w.handle.SetTitle(title)
}
