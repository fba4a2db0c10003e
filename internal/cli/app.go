package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/nestframe/internal/config"
	"github.com/leapstack-labs/nestframe/internal/engine"
	"github.com/leapstack-labs/nestframe/internal/handler"
	"github.com/leapstack-labs/nestframe/internal/state"
)

// app bundles the per-invocation runtime: the engine session, the handler
// registry, and the optional history store, populated from configuration.
type app struct {
	cfg      *config.Config
	session  *engine.Session
	registry *handler.Registry
	store    *state.SQLiteStore
}

// newApp opens the session and store, builds the registry, and registers
// every configured table. The returned cleanup closes everything.
func newApp(cmd *cobra.Command) (*app, func(), error) {
	ctx := cmd.Context()
	cfg := getConfig(ctx)
	logger := getLogger(ctx)

	sess, err := engine.Open(cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}

	a := &app{cfg: cfg, session: sess}
	cleanup := func() {
		_ = sess.Close()
		if a.store != nil {
			_ = a.store.Close()
		}
	}

	opts := []handler.Option{
		handler.WithLogger(logger),
		handler.WithMaxDepth(cfg.MaxDepth),
	}
	if cfg.StatePath != "" {
		if dir := filepath.Dir(cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				cleanup()
				return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
		store, err := state.Open(cfg.StatePath, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		a.store = store
		opts = append(opts, handler.WithStore(store))
	}
	a.registry = handler.NewRegistry(opts...)

	if err := a.registerTables(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}

// registerTables registers every configured table. CSV sources are loaded
// first; registrations are independent of each other and run concurrently.
func (a *app) registerTables(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, t := range a.cfg.Tables {
		g.Go(func() error {
			tableName := t.Table
			if t.CSV != "" {
				tableName = t.Name
				if err := a.session.LoadCSV(ctx, tableName, t.CSV); err != nil {
					return fmt.Errorf("table %q: %w", t.Name, err)
				}
			}
			if _, err := a.registry.Add(ctx, t.Name, a.session.Table(tableName), t.Qualifier); err != nil {
				return fmt.Errorf("table %q: %w", t.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
