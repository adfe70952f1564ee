package app

import (
	"context"
	"errors"
	"fmt"

	"dmxsend/internal/directive"
	"dmxsend/internal/logger"
	"dmxsend/internal/universe"
)

// ErrStateWrite is returned when the universe was sent but could not be persisted.
var ErrStateWrite = errors.New("failed to write state file")

// Store loads and saves the last sent universe.
type Store interface {
	Load() (universe.Universe, error)
	Save(u universe.Universe) error
}

// Transmitter sends a whole universe to the fixtures.
type Transmitter interface {
	Transmit(ctx context.Context, u universe.Universe) error
}

// App runs one command: parse, load, apply, transmit, persist.
type App struct {
	log   logger.Logger
	store Store
	tx    Transmitter
}

// New конструктор.
func New(log logger.Logger, store Store, tx Transmitter) *App {
	return &App{log: log, store: store, tx: tx}
}

// Run applies the channel tokens and sends the result. The store is written
// only after a successful transmit.
func (a *App) Run(ctx context.Context, tokens []string) error {
	log := a.log.With(logger.Fields{"module": "app"})

	ds, err := directive.ParseAll(tokens)
	if err != nil {
		return err
	}

	var u universe.Universe
	if directive.Stateful(ds) {
		prev, err := a.store.Load()
		if err != nil {
			log.Warnf("Couldn't read state file; turning unspecified channels off! (%v)", err)
		} else {
			u = prev
		}
	}

	u = directive.Fold(u, ds)
	log.Debugf("applied %d directives", len(ds))

	if err := a.tx.Transmit(ctx, u); err != nil {
		return err
	}
	if err := a.store.Save(u); err != nil {
		return fmt.Errorf("%w: %v", ErrStateWrite, err)
	}
	return nil
}
