package behavior

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/milk9111/robotmasters/prefabs"
)

// Catalog holds the compiled definition of every boss prefab. A prefab
// that fails to compile keeps its last good definition and records the
// error.
type Catalog struct {
	opts     Options
	log      *zap.Logger
	load     func(name string) (prefabs.BossSpec, error)
	defs     map[string]*Definition
	errs     map[string]error
	onReload []func(name string, def *Definition)
}

func NewCatalog(opts Options, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		opts: opts,
		log:  logger,
		load: prefabs.LoadBossSpec,
		defs: map[string]*Definition{},
		errs: map[string]error{},
	}
}

// SetLoader replaces how boss specs are read, mainly for tests.
func (c *Catalog) SetLoader(load func(name string) (prefabs.BossSpec, error)) {
	c.load = load
}

// OnReload registers fn to run after a definition is replaced.
func (c *Catalog) OnReload(fn func(name string, def *Definition)) {
	c.onReload = append(c.onReload, fn)
}

// LoadAll compiles every embedded boss prefab. It returns every failure
// joined; definitions that compiled are usable either way.
func (c *Catalog) LoadAll() error {
	names, err := prefabs.BossNames()
	if err != nil {
		return err
	}
	return c.Load(names...)
}

func (c *Catalog) Load(names ...string) error {
	var errs []error
	for _, name := range names {
		if err := c.Reload(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reload recompiles one boss.
func (c *Catalog) Reload(name string) error {
	spec, err := c.load(name)
	if err != nil {
		err = &ConfigError{Entity: name, Err: err}
		c.errs[name] = err
		c.log.Warn("boss prefab load failed", zap.String("boss", name), zap.Error(err))
		return err
	}
	def, err := Compile(spec, c.opts)
	if err != nil {
		c.errs[name] = err
		c.log.Warn("boss prefab invalid", zap.String("boss", name), zap.Error(err))
		return err
	}
	delete(c.errs, name)
	_, replaced := c.defs[name]
	c.defs[name] = def
	if def.notImplemented != "" {
		c.log.Debug("boss not implemented", zap.String("boss", name), zap.String("reason", def.notImplemented))
	}
	if replaced {
		c.log.Info("boss prefab reloaded", zap.String("boss", name))
		for _, fn := range c.onReload {
			fn(name, def)
		}
	}
	return nil
}

// Get returns the current definition for name.
func (c *Catalog) Get(name string) (*Definition, error) {
	if def, ok := c.defs[name]; ok {
		return def, nil
	}
	if err, ok := c.errs[name]; ok {
		return nil, err
	}
	return nil, &ConfigError{Entity: name, Err: fmt.Errorf("unknown boss")}
}

// Names lists bosses with a usable definition, sorted.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.defs))
	for name := range c.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Errors returns the latest compile error per boss.
func (c *Catalog) Errors() map[string]error {
	out := make(map[string]error, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// ReloadPath reloads whatever a changed prefab file affects: the boss
// whose spec it is, or every boss using it as a script. It returns the
// bosses it tried to reload.
func (c *Catalog) ReloadPath(p string) ([]string, error) {
	if name, ok := prefabs.BossNameFromPath(p); ok {
		return []string{name}, c.Reload(name)
	}
	script := filepath.Base(p)
	var names []string
	for _, name := range c.Names() {
		if c.defs[name].Script() == script {
			names = append(names, name)
		}
	}
	return names, c.Load(names...)
}
