// Package game runs the interactive viewer: it loads a scene file, moves the
// camera, builds one render batch per frame and submits it.
package game

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chewxy/math32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/greed/internal/config"
	"github.com/Faultbox/greed/internal/engine/batch"
	"github.com/Faultbox/greed/internal/engine/bounds"
	"github.com/Faultbox/greed/internal/engine/camera"
	"github.com/Faultbox/greed/internal/engine/debug"
	"github.com/Faultbox/greed/internal/engine/input"
	"github.com/Faultbox/greed/internal/engine/lod"
	"github.com/Faultbox/greed/internal/engine/picking"
	"github.com/Faultbox/greed/internal/engine/renderer"
	"github.com/Faultbox/greed/internal/engine/scene"
	"github.com/Faultbox/greed/internal/engine/window"
	"github.com/Faultbox/greed/internal/game/level"
	"github.com/Faultbox/greed/internal/logger"
	"github.com/Faultbox/greed/internal/metrics"
	"github.com/Faultbox/greed/internal/scenefile"
	"github.com/Faultbox/greed/pkg/math"
)

// Node names with built-in behaviour.
const (
	spinnerNode = "spinner"
	playerNode  = "player"
)

var (
	boundsColor   = [4]float32{0.2, 0.9, 0.3, 1}
	selectedColor = [4]float32{1, 0.8, 0.1, 1}
	frustumColor  = [4]float32{0.9, 0.3, 0.9, 1}
)

// Game is the viewer instance.
type Game struct {
	cfg *config.Config
	log *zap.Logger

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.Camera

	level    *level.Level
	spinners []*level.Spinner
	selected *scene.Node

	// frozen is the culling viewpoint while the F3 freeze is active.
	frozen *fixedView

	watcher     *scenefile.Watcher
	metrics     *http.Server
	screenshots *debug.Screenshots
	overlay     debug.Overlay
	// capture is set by F12 and served after the next frame is drawn.
	capture bool
}

// New creates the window, GL state and the first level.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		cfg:         cfg,
		log:         logger.Named("game"),
		screenshots: debug.NewScreenshots("screenshots", "greed"),
	}
	g.log.Info("initializing viewer",
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.String("scene", cfg.Scene.Path),
	)

	g.screenshots.Format = debug.ImageFormat(cfg.Graphics.Screenshot)

	var err error
	g.window, err = window.New("Greed", cfg.Graphics)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	g.renderer, err = renderer.New(renderer.Config{Width: cfg.Graphics.Width, Height: cfg.Graphics.Height})
	if err != nil {
		g.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	g.input = input.New()

	pos, err := camera.New(cfg.Camera.Mode, cfg.Camera.Speed)
	if err != nil {
		g.Close()
		return nil, err
	}
	g.camera = &camera.Camera{
		Positioner: pos,
		Projection: camera.Projection{
			FovY:   cfg.Camera.FOV * math32.Pi / 180,
			Aspect: g.window.Aspect(),
			Near:   cfg.Camera.Near,
			Far:    cfg.Camera.Far,
		},
	}

	lvl, err := g.load()
	if err != nil {
		g.Close()
		return nil, err
	}
	g.install(lvl)
	if d, ok := pos.(*camera.Debug); ok {
		if box, has := lvl.Root.SubtreeBounds(); has {
			d.FitToBounds(box)
		}
	}

	if cfg.Scene.HotReload {
		g.watcher, err = scenefile.Watch(cfg.Scene.Path, cfg.Scene.Debounce)
		if err != nil {
			g.log.Warn("hot reload disabled", zap.Error(err))
		}
	}
	if cfg.Metrics.Addr != "" {
		g.serveMetrics(cfg.Metrics.Addr)
	}
	return g, nil
}

func (g *Game) levelOptions() level.Options {
	return level.Options{
		Batch: batch.Options{
			PruneSubtrees:  g.cfg.Culling.PruneSubtrees,
			DisableCulling: !g.cfg.Culling.Enabled,
		},
		Workers: g.cfg.Culling.Workers,
	}
}

func (g *Game) load() (*level.Level, error) {
	sc, err := scenefile.Load(g.cfg.Scene.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	return level.New(sc, g.levelOptions())
}

// install makes lvl current, uploads its geometry and binds demo bodies.
func (g *Game) install(lvl *level.Level) {
	g.level = lvl
	g.selected = nil
	g.spinners = g.spinners[:0]
	g.renderer.Upload(lvl.Vertices, lvl.Indices)
	g.renderer.SetSun(lvl.Sun)
	g.window.SetTitle("Greed - " + lvl.Name)

	// Resolve once so subtree bounds exist for camera fitting and picking.
	scene.Resolve(lvl.Root)

	lvl.Root.Walk(func(n *scene.Node) bool {
		if n.Name == spinnerNode {
			s := level.NewSpinner(n.Local, math.Vec3{Y: 1}, 0.8)
			if err := lvl.Attach(n.Name, s); err == nil {
				g.spinners = append(g.spinners, s)
			}
		}
		return true
	})
	if p, ok := g.camera.Positioner.(*camera.Player); ok {
		if n := lvl.Root.Find(playerNode); n != nil {
			p.Follow(n.Local.Translation)
			_ = lvl.Attach(playerNode, &level.Follower{Base: n.Local, Target: func() math.Vec3 { return p.Target }})
		}
	}
}

func (g *Game) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	g.metrics = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		g.log.Info("serving metrics", zap.String("addr", addr))
		if err := g.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.log.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

// Run drives the frame loop until the window closes or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := lastTime

	g.log.Info("starting frame loop")
	for ctx.Err() == nil {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if g.input.Update() {
			return nil
		}
		if quit := g.handleEvents(); quit {
			return nil
		}
		g.reloadIfChanged()

		g.camera.Update(dt, g.input.Movement())
		for _, s := range g.spinners {
			s.Advance(dt)
		}

		if err := g.render(ctx); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if g.capture {
			g.capture = false
			g.screenshot()
		}
		g.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			g.log.Debug("fps", zap.Int("count", frameCount), zap.Float32("dt_ms", dt*1000))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return ctx.Err()
}

func (g *Game) handleEvents() (quit bool) {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			g.renderer.Resize(event.Width, event.Height)
			g.camera.Projection.Aspect = g.window.Aspect()
		case input.EventClick:
			g.pick(event.MouseX, event.MouseY)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				return true
			case sdl.SCANCODE_F1:
				g.cfg.Culling.ShowBounds = !g.cfg.Culling.ShowBounds
			case sdl.SCANCODE_F2:
				g.cfg.Culling.Enabled = !g.cfg.Culling.Enabled
				g.level.SetOptions(g.levelOptions())
				g.log.Info("culling toggled", zap.Bool("enabled", g.cfg.Culling.Enabled))
			case sdl.SCANCODE_F3:
				g.toggleFreeze()
			case sdl.SCANCODE_F12:
				g.capture = true
			}
		}
	}
	return false
}

func (g *Game) toggleFreeze() {
	if g.frozen != nil {
		g.frozen = nil
		g.log.Info("culling camera released")
		return
	}
	g.frozen = &fixedView{
		viewProj: g.camera.ViewProj(),
		position: g.camera.Position(),
		forward:  g.camera.Forward(),
		near:     g.camera.Near(),
	}
	g.log.Info("culling camera frozen")
}

func (g *Game) reloadIfChanged() {
	if g.watcher == nil {
		return
	}
	select {
	case <-g.watcher.Reloads():
	default:
		return
	}
	lvl, err := g.load()
	if err != nil {
		g.log.Warn("scene reload failed, keeping previous level", zap.Error(err))
		return
	}
	g.log.Info("scene reloaded", zap.Stringer("level_id", lvl.ID))
	g.install(lvl)
}

func (g *Game) render(ctx context.Context) error {
	g.renderer.Begin()

	var cull level.Viewpoint = g.camera
	if g.frozen != nil {
		cull = g.frozen
	}
	b, err := g.level.Frame(ctx, cull)
	if err != nil {
		return err
	}
	viewProj := g.camera.ViewProj()
	g.renderer.Submit(b, g.level.Materials, viewProj)

	if g.cfg.Culling.ShowBounds || g.selected != nil {
		g.overlay.Reset()
		g.level.DebugBoxes(func(n *scene.Node, box bounds.Box) {
			if n == g.selected {
				g.overlay.Add(box, true)
			} else if g.cfg.Culling.ShowBounds {
				g.overlay.Add(box, false)
			}
		})
		g.renderer.Lines(g.overlay.Normal, boundsColor, viewProj)
		g.renderer.Lines(g.overlay.Selected, selectedColor, viewProj)
	}
	if g.frozen != nil {
		f := g.level.Frustum()
		g.renderer.Lines(debug.FrustumWireframe(&f), frustumColor, viewProj)
	}
	return nil
}

func (g *Game) pick(x, y int) {
	w, h := g.window.Size()
	ray, ok := picking.ScreenToRay(float32(x), float32(y), float32(w), float32(h), g.camera.ViewProj())
	if !ok {
		return
	}
	node, dist, hit := g.level.Pick(ray)
	if !hit {
		g.selected = nil
		return
	}
	g.selected = node

	fields := []zap.Field{
		zap.String("path", node.Path()),
		zap.Float32("distance", dist),
		zap.Any("hit", ray.At(dist)),
		zap.Any("origin", node.WorldMatrix().TranslationPart()),
	}
	if wb, ok := node.WorldBounds(); ok {
		fields = append(fields, zap.Float32("coverage", lod.Ratio(wb, g.camera.Near(), g.camera.Position(), g.camera.Forward())))
	}
	g.log.Info("node selected", fields...)
}

func (g *Game) screenshot() {
	pixels, w, h := g.renderer.ReadPixels()
	path, err := g.screenshots.Save(pixels, w, h)
	if err != nil {
		g.log.Warn("screenshot failed", zap.Error(err))
		return
	}
	g.log.Info("screenshot saved", zap.String("path", path))
}

// fixedView is a camera snapshot used while culling is frozen.
type fixedView struct {
	viewProj math.Mat4
	position math.Vec3
	forward  math.Vec3
	near     float32
}

func (v *fixedView) ViewProj() math.Mat4 { return v.viewProj }
func (v *fixedView) Position() math.Vec3 { return v.position }
func (v *fixedView) Forward() math.Vec3  { return v.forward }
func (v *fixedView) Near() float32       { return v.near }

// Close releases every resource the viewer holds.
func (g *Game) Close() {
	g.log.Info("closing viewer")
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = g.metrics.Shutdown(ctx)
		cancel()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
