package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/milk9111/robotmasters/arena"
	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
	"github.com/milk9111/robotmasters/ledger"
	"github.com/milk9111/robotmasters/prefabs"
	"github.com/milk9111/robotmasters/sound"
)

var (
	colorBackground = color.RGBA{R: 16, G: 16, B: 28, A: 255}
	colorSolid      = color.RGBA{R: 90, G: 90, B: 110, A: 255}
	colorPlayer     = color.RGBA{R: 60, G: 140, B: 255, A: 255}
	colorBoss       = color.RGBA{R: 220, G: 60, B: 60, A: 255}
	colorBossHit    = color.RGBA{R: 255, G: 220, B: 220, A: 255}
	colorShot       = color.RGBA{R: 255, G: 230, B: 80, A: 255}
	colorEnemyShot  = color.RGBA{R: 255, G: 120, B: 40, A: 255}
	colorEffect     = color.RGBA{R: 255, G: 255, B: 255, A: 160}
	colorText       = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

var hudFace = text.NewGoXFace(basicfont.Face7x13)

// Game hosts one arena in an ebiten window. The simulation always steps
// by the configured fixed delta, independent of frame timing.
type Game struct {
	arena   *arena.Arena
	sounds  *sound.Queue
	audio   *audioSink
	watcher *prefabs.Watcher
	ledger  *ledger.Ledger
	log     *zap.Logger

	delta  float64
	width  int
	height int
	debug  bool
	paused bool
}

func NewGame(l *ledger.Ledger, watcher *prefabs.Watcher) (*Game, error) {
	g := &Game{
		sounds:  sound.NewQueue(logger),
		audio:   newAudioSink(cfg.Audio, logger),
		watcher: watcher,
		ledger:  l,
		log:     logger,
		delta:   cfg.Sim.Delta(),
		debug:   cfg.Window.Debug,
	}
	if err := g.restart(); err != nil {
		return nil, err
	}
	w, h := g.arena.Level.Bounds()
	g.width, g.height = int(w), int(h)
	return g, nil
}

func (g *Game) restart() error {
	a, err := newArena(keyboardInput{}, g.sounds)
	if err != nil {
		return err
	}
	recordDefeats(a, g.ledger)
	g.arena = a
	g.sounds.Drain()
	g.audio.StopLoops()
	return nil
}

func (g *Game) Update() error {
	g.applyReloads()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		g.debug = !g.debug
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.paused = !g.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := g.restart(); err != nil {
			g.log.Error("restart failed", zap.Error(err))
		}
	}
	if g.paused {
		return nil
	}

	g.arena.Step(g.delta)
	g.audio.Play(g.sounds.Drain())
	return nil
}

// applyReloads drains the prefab watcher without blocking.
func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.arena.ApplyReload(path)
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("prefab watcher", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	w := g.arena.World

	ecs.ForEach2(w, component.SolidTagComponent, component.PhysicsBodyComponent, func(e ecs.Entity, _ *component.SolidTag, pb *component.PhysicsBody) {
		if tr, ok := ecs.Get(w, e, component.TransformComponent); ok {
			g.fillBox(screen, tr.X, tr.Y, pb.Width, pb.Height, colorSolid)
		}
	})
	ecs.ForEach2(w, component.BossComponent, component.PhysicsBodyComponent, func(e ecs.Entity, boss *component.Boss, pb *component.PhysicsBody) {
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return
		}
		c := colorBoss
		if boss.Controller.Invincible() && w.Tick()/4%2 == 0 {
			c = colorBossHit
		}
		g.fillBox(screen, tr.X, tr.Y, pb.Width, pb.Height, c)
		g.facingMark(screen, tr.X, tr.Y, pb.Width, boss.Controller.Facing())
	})
	ecs.ForEach2(w, component.PlayerComponent, component.PhysicsBodyComponent, func(e ecs.Entity, p *component.Player, pb *component.PhysicsBody) {
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok || (p.Invincible > 0 && w.Tick()/4%2 == 0) {
			return
		}
		g.fillBox(screen, tr.X, tr.Y, pb.Width, pb.Height, colorPlayer)
		g.facingMark(screen, tr.X, tr.Y, pb.Width, p.Facing)
	})
	ecs.ForEach2(w, component.ProjectileComponent, component.PhysicsBodyComponent, func(e ecs.Entity, proj *component.Projectile, pb *component.PhysicsBody) {
		tr, ok := ecs.Get(w, e, component.TransformComponent)
		if !ok {
			return
		}
		c := colorShot
		if proj.Faction == component.FactionEnemy {
			c = colorEnemyShot
		}
		g.fillBox(screen, tr.X, tr.Y, pb.Width, pb.Height, c)
	})
	ecs.ForEach2(w, component.EffectTagComponent, component.TransformComponent, func(_ ecs.Entity, _ *component.EffectTag, tr *component.Transform) {
		vector.DrawFilledCircle(screen, float32(tr.X), float32(float64(g.height)-tr.Y), 6, colorEffect, false)
	})

	if g.debug {
		drawPhysicsDebug(g.arena.Physics.Space(), screen, float64(g.height))
	}
	g.drawHUD(screen)
}

func (g *Game) fillBox(screen *ebiten.Image, cx, cy, w, h float64, c color.Color) {
	x := cx - w/2
	y := float64(g.height) - (cy + h/2)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (g *Game) facingMark(screen *ebiten.Image, cx, cy, w float64, facing int) {
	x := cx + float64(facing)*(w/2-2)
	y := float64(g.height) - cy - 4
	vector.DrawFilledRect(screen, float32(x-1), float32(y), 2, 2, colorText, false)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	var lines []string
	if p, ok := g.arena.Player(); ok {
		lines = append(lines, fmt.Sprintf("PLAYER %2d/%d  charge %.1f", p.Health, p.Tuning.Health, p.Charge))
	}
	ecs.ForEach(g.arena.World, component.BossComponent, func(_ ecs.Entity, boss *component.Boss) {
		ctrl := boss.Controller
		line := fmt.Sprintf("%s %2d/%d %s", strings.ToUpper(boss.Name), ctrl.Health(), ctrl.Definition().Health, ctrl.Lifecycle())
		if ctrl.Lifecycle() == behavior.Active {
			line += " [" + string(ctrl.State()) + "]"
		}
		lines = append(lines, line)
	})
	switch {
	case g.paused:
		lines = append(lines, "PAUSED")
	case g.arena.Over():
		lines = append(lines, "R to restart")
	}
	if g.debug {
		lines = append(lines, fmt.Sprintf("tick %d  %.1f fps", g.arena.World.Tick(), ebiten.ActualFPS()))
	}

	op := &text.DrawOptions{}
	op.GeoM.Translate(20, 18)
	op.ColorScale.ScaleWithColor(colorText)
	op.LineSpacing = 14
	text.Draw(screen, strings.Join(lines, "\n"), hudFace, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}
