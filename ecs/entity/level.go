package entity

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs"
	"github.com/milk9111/robotmasters/ecs/component"
	"github.com/milk9111/robotmasters/levels"
)

// LevelOptions adjust how a level is populated.
type LevelOptions struct {
	// Boss replaces the boss named by every boss placement when set.
	Boss string
}

// Loaded is what BuildLevel placed.
type Loaded struct {
	Player ecs.Entity
	Bosses []ecs.Entity
	Solids int
}

// BuildLevel adds the level geometry and its placed entities to the
// world. An entity that fails to spawn is logged and skipped; the
// returned error joins every such failure.
func (f *Factory) BuildLevel(lvl *levels.Level, opts LevelOptions) (Loaded, error) {
	var out Loaded
	for _, r := range lvl.Solids() {
		e := f.w.CreateEntity()
		_ = ecs.Add(f.w, e, component.TransformComponent, &component.Transform{X: r.X, Y: r.Y})
		_ = ecs.Add(f.w, e, component.PhysicsBodyComponent, &component.PhysicsBody{
			Width:    r.Width,
			Height:   r.Height,
			Friction: 0.8,
			Static:   true,
		})
		_ = ecs.Add(f.w, e, component.SolidTagComponent, &component.SolidTag{})
		out.Solids++
	}

	var errs []error
	for i, placed := range lvl.Entities {
		x, y := lvl.WorldPosition(placed.X, placed.Y)
		switch placed.Type {
		case "player":
			out.Player = f.SpawnPlayer(x, y)
		case TypeBoss:
			props := behavior.Properties{}
			for k, v := range placed.Props {
				props[k] = v
			}
			props["x"], props["y"] = x, y
			name, _ := props.String("name")
			if opts.Boss != "" {
				name = opts.Boss
			}
			e, err := f.SpawnBoss(name, props)
			if err != nil {
				f.log.Warn("level boss skipped", zap.Int("index", i), zap.String("boss", name), zap.Error(err))
				errs = append(errs, fmt.Errorf("entity %d (%s): %w", i, name, err))
				continue
			}
			out.Bosses = append(out.Bosses, e)
		default:
			f.log.Warn("level entity skipped", zap.Int("index", i), zap.String("type", placed.Type))
			errs = append(errs, fmt.Errorf("entity %d: %w: %q", i, ErrUnknownType, placed.Type))
		}
	}
	return out, errors.Join(errs...)
}
