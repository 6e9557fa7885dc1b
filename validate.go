package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/milk9111/robotmasters/behavior"
	"github.com/milk9111/robotmasters/ecs/entity"
	"github.com/milk9111/robotmasters/levels"
	"github.com/milk9111/robotmasters/prefabs"
	"github.com/milk9111/robotmasters/sense"
	"github.com/milk9111/robotmasters/sound"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Compile every prefab and level and list every problem",
	RunE:  runValidate,
}

var errInvalidPrefabs = errors.New("prefabs have errors")

// nopFactory satisfies controllers that spawn; validation never runs
// their actions.
type nopFactory struct{}

func (nopFactory) Fetch(entityType, variant string) (behavior.Spawnable, error) {
	return nil, entity.ErrUnknownType
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	report := func(kind, name string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %-10s %-14s %v\n", kind, name, err)
			return
		}
		fmt.Fprintf(out, "ok   %-10s %s\n", kind, name)
	}

	catalog := behavior.NewCatalog(behavior.Options{RequiredDamageTags: behavior.DefaultDamageTags}, logger)
	_ = catalog.LoadAll()
	names, err := prefabs.BossNames()
	if err != nil {
		return err
	}
	for _, name := range names {
		def, err := catalog.Get(name)
		if err != nil {
			report("boss", name, err)
			continue
		}
		if reason := def.NotImplemented(); reason != "" {
			fmt.Fprintf(out, "skip boss       %-14s not implemented: %s\n", name, reason)
			continue
		}
		_, err = behavior.NewController(def, behavior.Deps{
			Body:    sense.NewMemory(0, 0),
			Factory: nopFactory{},
			Sounds:  &sound.Recorder{},
		})
		// A state may still be unfinished in an otherwise working boss.
		report("boss", name, err)
	}

	_, err = prefabs.LoadProjectilesSpec()
	report("prefab", "projectiles", err)
	_, err = prefabs.LoadPlayerSpec()
	report("prefab", "player", err)

	levelNames, err := levels.Names()
	if err != nil {
		return err
	}
	for _, name := range levelNames {
		lvl, err := levels.Load(name)
		if err == nil {
			err = checkLevelBosses(lvl, catalog)
		}
		report("level", name, err)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d failed", errInvalidPrefabs, failed)
	}
	return nil
}

func checkLevelBosses(lvl *levels.Level, catalog *behavior.Catalog) error {
	var errs []error
	for i, e := range lvl.Entities {
		if e.Type != entity.TypeBoss {
			continue
		}
		name, _ := e.Props["name"].(string)
		if _, err := catalog.Get(name); err != nil {
			errs = append(errs, fmt.Errorf("entity %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
