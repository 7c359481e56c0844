package dynconfig

import "context"

// CombinedLoader layers a file source under an environment overlay: it
// loads from the file loader when present (else Default()), then applies
// the environment loader's overrides on top. This is the "layered
// loaders" behavior named in SPEC_FULL.md — a deliberate generalization
// of the original's first-existing-source-wins CombinedLoader, since the
// distilled spec names file+environment as layers rather than
// alternatives.
type CombinedLoader struct {
	File *FileLoader
	Env  *EnvLoader
}

func NewCombinedLoader(file *FileLoader, env *EnvLoader) *CombinedLoader {
	return &CombinedLoader{File: file, Env: env}
}

func (c *CombinedLoader) Load(ctx context.Context) (Config, error) {
	base := Default()
	if c.File != nil && c.File.Exists(ctx) {
		loaded, err := c.File.Load(ctx)
		if err != nil {
			return Config{}, err
		}
		base = loaded
	}

	if c.Env != nil {
		base = c.Env.ApplyOverrides(base)
	}

	return base, nil
}

// Save persists to the file loader; the environment layer is read-only.
func (c *CombinedLoader) Save(ctx context.Context, cfg Config) error {
	if c.File == nil {
		return nil
	}
	return c.File.Save(ctx, cfg)
}
