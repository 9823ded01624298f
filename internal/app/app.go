// Package app wires the configured storage backends into the inventory
// facade.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/config"
	"github.com/atinyakov/ShopKeeper/internal/db"
	"github.com/atinyakov/ShopKeeper/internal/kv"
	"github.com/atinyakov/ShopKeeper/internal/repository"
	"github.com/atinyakov/ShopKeeper/internal/service"
)

// listenerPing is how often an idle change listener connection is checked.
const listenerPing = 90 * time.Second

// Open builds the storage facade from opts. The local store is always
// opened. When a DSN is configured the Postgres document store is connected
// and its change notifications are consumed until the returned closer runs;
// an unreachable database leaves the facade in local mode.
func Open(ctx context.Context, opts *config.Options, log *zap.Logger) (*service.Storage, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}

	local, err := kv.Open(opts.LocalBackend, opts.LocalPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}
	closers := []func() error{local.Close}

	listenCtx, stop := context.WithCancel(ctx)
	var remote service.RemoteStore
	if opts.DatabaseDSN != "" {
		store, closeRemote, err := openRemote(listenCtx, opts.DatabaseDSN, log)
		if err != nil {
			log.Warn("cannot init database, continuing with local storage", zap.Error(err))
		} else {
			remote = store
			closers = append(closers, closeRemote...)
		}
	}

	storage := service.NewStorage(ctx, remote, local, log)

	closeAll := func() error {
		stop()
		var errs error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = multierr.Append(errs, closers[i]())
		}
		return errs
	}
	return storage, closeAll, nil
}

// openRemote connects to Postgres and starts the change listener. A
// listener failure only disables change subscriptions.
func openRemote(ctx context.Context, dsn string, log *zap.Logger) (*repository.DocumentStore, []func() error, error) {
	database, err := db.InitPostgres(dsn)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{database.Close}

	var hub *db.ChangeHub
	listener, err := db.NewListener(dsn, log)
	if err != nil {
		log.Warn("change notifications disabled", zap.Error(err))
	} else {
		hub = db.NewChangeHub(log)
		hub.Start(ctx, listener, listenerPing)
		closers = append(closers, listener.Close)
	}

	return repository.NewDocumentStore(database, hub, log), closers, nil
}
