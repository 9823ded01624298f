package service

import (
	"errors"
	"fmt"

	"github.com/atinyakov/ShopKeeper/internal/models"
)

var (
	// ErrNotFound is returned when the addressed record or catalog entry does not exist.
	ErrNotFound = models.ErrNotFound
	// ErrExists is returned when a catalog entry is already present.
	ErrExists = models.ErrExists
	// ErrInvalid is returned for catalog entries with missing names and for
	// patches that do not fit the record type.
	ErrInvalid = errors.New("invalid input")
	// ErrFallback accompanies data that was read from the local snapshot
	// because the remote store failed.
	ErrFallback = errors.New("remote store failed, served local data")
	// ErrWatchUnsupported is returned by change subscriptions in local mode.
	ErrWatchUnsupported = errors.New("change notifications require the remote store")
)

func fallback(cause error) error {
	return fmt.Errorf("%w: %w", ErrFallback, cause)
}

// usable reports whether data returned alongside err can be used.
func usable(err error) bool {
	return err == nil || errors.Is(err, ErrFallback)
}
