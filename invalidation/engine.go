// Package invalidation removes related cache entries across every level by
// named rule. Rules are predicates registered under a name; strategies and
// callers refer to rules by name only.
package invalidation

import (
	"context"

	"cache-manager/internal/common/errors"
	"cache-manager/internal/common/logging"
	"cache-manager/internal/common/registry"
	"cache-manager/levels"
)

// Predicate decides whether key should be invalidated. The rule context
// carries caller-supplied values for predicates that need them; the shipped
// constructors close over their configuration and ignore it.
type Predicate func(key string, ruleCtx map[string]interface{}) bool

// Engine resolves rule names to predicates and applies them across levels.
type Engine struct {
	rules  *registry.Registry[Predicate]
	levels []levels.Level
	logger logging.Logger
}

// NewEngine creates an engine over the given levels.
func NewEngine(lvls []levels.Level, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &Engine{
		rules:  registry.New[Predicate]("invalidation rule"),
		levels: lvls,
		logger: logger,
	}
}

// Register stores the predicate under name. Re-registration replaces the
// previous predicate.
func (e *Engine) Register(name string, p Predicate) error {
	if name == "" {
		return errors.ConfigError("invalidation rule name cannot be empty")
	}
	if p == nil {
		return errors.ConfigError("invalidation rule predicate cannot be nil")
	}

	e.rules.Register(name, p)
	return nil
}

// Invalidate applies the named rule and returns how many distinct keys were
// removed. Invalidation is best-effort: a level that cannot scan contributes
// no candidates, and the count covers only keys at least one level actually
// deleted.
func (e *Engine) Invalidate(ctx context.Context, rule string, ruleCtx map[string]interface{}) int {
	predicate, err := e.rules.Get(rule)
	if err != nil {
		e.logger.Warn("Skipping invalidation for unregistered rule",
			logging.String("rule", rule),
			logging.Err(errors.UnknownRuleError(rule)),
		)
		return 0
	}

	// Union the key sets visible across levels
	seen := make(map[string]struct{})
	for _, lvl := range e.levels {
		keys, err := lvl.Scan(ctx, "")
		if err != nil {
			e.logger.Warn("Level scan failed during invalidation",
				logging.String("level", lvl.Name()),
				logging.String("rule", rule),
				logging.Err(err),
			)
			continue
		}
		for _, key := range keys {
			seen[key] = struct{}{}
		}
	}

	removed := 0
	for key := range seen {
		if !predicate(key, ruleCtx) {
			continue
		}

		deleted := false
		for _, lvl := range e.levels {
			if err := lvl.Delete(ctx, key); err != nil {
				e.logger.Warn("Level delete failed during invalidation",
					logging.String("level", lvl.Name()),
					logging.String("key", key),
					logging.Err(err),
				)
				continue
			}
			deleted = true
		}
		if deleted {
			removed++
		}
	}

	if removed > 0 {
		e.logger.Info("Invalidated cache entries",
			logging.String("rule", rule),
			logging.Int("count", removed),
		)
	}

	return removed
}

// IsRegistered reports whether a rule is known under name.
func (e *Engine) IsRegistered(name string) bool {
	return e.rules.IsRegistered(name)
}
