package authorize

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	psqlwatcher "github.com/IguteChung/casbin-psql-watcher"
	casbin "github.com/casbin/casbin/v2"
	entadapter "github.com/casbin/ent-adapter"
)

const watcherChannel = "portal_casbin_policy"

// policyReloadFailed is set when a watcher-triggered reload fails and
// cleared by the next successful one. The readiness probe reads it.
var policyReloadFailed atomic.Bool

func IsPolicyHealthy() bool { return !policyReloadFailed.Load() }

type CleanupFunc func(ctx context.Context)

// NewEnforcer persists policies in Postgres through the ent adapter. With
// PolicySyncEnabled, writes are broadcast over LISTEN/NOTIFY and every
// instance reloads on receipt.
func NewEnforcer(cfg Config, dsn string) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	m, err := LoadModel(cfg.CasbinModelPath)
	if err != nil {
		return nil, nil, err
	}
	adapter, err := entadapter.NewAdapter("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open policy adapter: %w", err)
	}
	e, err := casbin.NewDistributedEnforcer(m, adapter)
	if err != nil {
		return nil, nil, fmt.Errorf("create enforcer: %w", err)
	}
	e.EnableAutoSave(true)
	e.EnableEnforce(true)

	if !cfg.PolicySyncEnabled {
		return e, func(context.Context) {}, nil
	}
	w, err := attachWatcher(e, dsn)
	if err != nil {
		return nil, nil, err
	}
	return e, func(context.Context) { w.Close() }, nil
}

func attachWatcher(e *casbin.DistributedEnforcer, dsn string) (*psqlwatcher.Watcher, error) {
	w, err := psqlwatcher.NewWatcherWithConnString(context.Background(), dsn, psqlwatcher.Option{Channel: watcherChannel})
	if err != nil {
		return nil, fmt.Errorf("start policy watcher: %w", err)
	}
	reload := func(msg string) {
		err := e.LoadPolicy()
		policyReloadFailed.Store(err != nil)
		if err != nil {
			slog.Error("casbin: reload after notify failed", "err", err)
			return
		}
		slog.Debug("casbin: policies reloaded", "notify", msg)
	}
	if err := w.SetUpdateCallback(reload); err != nil {
		w.Close()
		return nil, fmt.Errorf("set watcher callback: %w", err)
	}
	if err := e.SetWatcher(w); err != nil {
		w.Close()
		return nil, fmt.Errorf("set watcher: %w", err)
	}
	return w, nil
}
