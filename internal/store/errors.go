package store

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/i474232898/weather-history/internal/common"
	"github.com/i474232898/weather-history/internal/weather"
)

// classify maps driver errors onto the weather sentinels so callers can use errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return weather.ErrNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", weather.ErrForeignKey, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23503":
			return fmt.Errorf("%w: %s (%s)", weather.ErrForeignKey, pgErr.Message, pgErr.ConstraintName)
		// Class 08 is connection exceptions; 57P0x are server shutdowns.
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P0"):
			return fmt.Errorf("%w: %s", weather.ErrStorageUnavailable, pgErr.Message)
		case pgErr.ConstraintName != "":
			return fmt.Errorf("%s (constraint %s): %w", pgErr.Message, pgErr.ConstraintName, err)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) || pgconn.Timeout(err) || isConnectivityError(err) {
		return fmt.Errorf("%w: %v", weather.ErrStorageUnavailable, err)
	}
	return err
}

func isConnectivityError(err error) bool {
	return common.HasAny(err.Error(),
		"connection refused",
		"connection reset",
		"broken pipe",
		"conn closed",
		"no such host",
		"failed to connect",
	)
}
