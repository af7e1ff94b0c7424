package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/language"

	"github.com/tendlog/tend/internal/catalog"
	"github.com/tendlog/tend/internal/config"
	"github.com/tendlog/tend/internal/derive"
	"github.com/tendlog/tend/internal/event"
	"github.com/tendlog/tend/internal/notify"
	"github.com/tendlog/tend/internal/sink"
	"github.com/tendlog/tend/internal/store"
)

const archiveFileName = "archive.db"

// app wires the collaborators every command needs: config, catalog,
// statefile, sink, archive mirror, and the peer broadcast marker.
type app struct {
	cfg     config.Config
	cat     *catalog.Catalog
	states  *store.StateFile
	deriver *derive.Deriver
	sink    *sink.Sink
	archive *store.Archive
	caster  *notify.Broadcaster
	logger  *slog.Logger

	// recovered is true when a corrupt statefile was replaced by a
	// fresh empty log on load.
	recovered bool

	// seq tracks the archived log position for the mirror subscription.
	seq int
}

// openApp loads config and state and builds the full collaborator graph.
//
// A LoadFailure is recovered here, never repaired: the corrupt file is
// left in place for inspection and the sink starts over with a fresh log.
func openApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cat := catalog.Default()
	if cfg.Catalog != "" {
		cat, err = catalog.LoadFile(cfg.Catalog)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "load catalog", err)
		}
	}

	states, err := store.NewStateFile(cfg.DataDir, logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open data directory", err)
	}

	st, _, err := states.Load()
	recovered := false
	if err != nil {
		if !store.IsLoadFailure(err) {
			return nil, WrapExitError(ExitCommandError, "load state", err)
		}
		logger.Warn("state unreadable, starting fresh log", "err", err)
		st = nil
		recovered = true
	}

	deriverOpts := []derive.Option{}
	if tag, err := language.Parse(cfg.Locale); err == nil {
		deriverOpts = append(deriverOpts, derive.WithLocale(tag))
	} else {
		logger.Warn("invalid locale, using english", "locale", cfg.Locale)
	}
	if cfg.Seasonal {
		deriverOpts = append(deriverOpts, derive.WithSeasonalAdjustment())
	}

	deriver := derive.New(cat, deriverOpts...)
	snk := sink.New(st, deriver,
		sink.WithLogger(logger),
		sink.WithDevice(cfg.Device),
	)

	archive, err := store.OpenArchive(filepath.Join(cfg.DataDir, archiveFileName))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open archive", err)
	}

	a := &app{
		cfg:       cfg,
		cat:       cat,
		states:    states,
		deriver:   deriver,
		sink:      snk,
		archive:   archive,
		caster:    notify.NewBroadcaster(cfg.DataDir),
		logger:    logger,
		recovered: recovered,
		seq:       len(snk.AppState().Events),
	}

	// Mirror every future append into the archive. The subscription gets
	// only the event, so the app tracks the log position itself.
	snk.SubscribeEvents(func(ev event.Event) {
		a.seq++
		if err := archive.AppendEvent(context.Background(), a.seq, ev); err != nil {
			logger.Warn("archive append failed", "err", err)
		}
	})

	// First run (or recovery) minted a user id and an app_init event;
	// persist right away so the identifier stays stable across commands.
	if st == nil {
		if err := states.Save(snk.AppState()); err != nil {
			logger.Warn("initial save failed", "err", err)
		}
	}

	return a, nil
}

// Close releases the archive handle.
func (a *app) Close() {
	if a.archive != nil {
		a.archive.Close()
	}
}

// syncArchive rebuilds the mirror when it has drifted from the log.
func (a *app) syncArchive(ctx context.Context) error {
	st := a.sink.AppState()
	n, err := a.archive.Count(ctx)
	if err != nil {
		return err
	}
	if n == len(st.Events) {
		return nil
	}
	a.logger.Debug("archive drifted, rebuilding", "archived", n, "log", len(st.Events))
	return a.archive.Rebuild(ctx, st.Events)
}

// saveAndBroadcast persists the current state and notifies peers. The
// returned error is a SaveFailure surfaced to the user as a save-status
// indicator; it never aborts the command or touches the in-memory log.
func (a *app) saveAndBroadcast(now time.Time) error {
	if err := a.states.Save(a.sink.AppState()); err != nil {
		return err
	}
	if err := a.caster.Broadcast(now); err != nil {
		a.logger.Warn("peer broadcast failed", "err", err)
	}
	return nil
}

// appendAndSave is the common append path for add-style commands: append
// to the sink (which re-derives and notifies), then persist.
func (a *app) appendAndSave(ev event.Event) (saveErr error, err error) {
	if err := a.sink.Append(ev); err != nil {
		return nil, WrapExitError(ExitCommandError, "append event", err)
	}
	return a.saveAndBroadcast(time.Now()), nil
}
