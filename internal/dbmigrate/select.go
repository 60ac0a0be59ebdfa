package dbmigrate

import (
	"errors"
	"fmt"

	"github.com/fdg312/careview/internal/config"
)

// ErrNoDatabaseURL is returned when the report metadata store has no
// connection string configured.
var ErrNoDatabaseURL = errors.New("dbmigrate: no database URL configured")

// Target — куда применять миграции таблицы reports.
type Target struct {
	URL string
	// Source — имя переменной окружения, из которой взят URL.
	Source string
	// Warning is set when the URL works but is a poor fit for DDL.
	Warning string
}

// SelectTarget picks the connection used for schema changes.
//
// The API server reads report metadata through the pooled URL, but goose
// needs a session-level connection, so the direct URL wins here:
// DATABASE_URL_DIRECT, then DATABASE_URL, then DATABASE_URL_POOLED with a
// warning. With directOnly (startup migrations in cmd/api) anything but
// DATABASE_URL_DIRECT is rejected.
func SelectTarget(cfg *config.Config, directOnly bool) (Target, error) {
	if cfg.DatabaseURLDirect != "" {
		return Target{URL: cfg.DatabaseURLDirect, Source: "DATABASE_URL_DIRECT"}, nil
	}
	if directOnly {
		return Target{}, fmt.Errorf("%w: RUN_MIGRATIONS_ON_STARTUP needs DATABASE_URL_DIRECT", ErrNoDatabaseURL)
	}

	switch {
	case cfg.DatabaseURLRaw != "":
		return Target{URL: cfg.DatabaseURLRaw, Source: "DATABASE_URL"}, nil
	case cfg.DatabaseURLPooled != "":
		return Target{
			URL:     cfg.DatabaseURLPooled,
			Source:  "DATABASE_URL_POOLED",
			Warning: "pooled connections may drop goose's session state; set DATABASE_URL_DIRECT",
		}, nil
	}
	return Target{}, fmt.Errorf("%w: set DATABASE_URL_DIRECT or DATABASE_URL", ErrNoDatabaseURL)
}
