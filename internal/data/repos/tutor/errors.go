// Package tutor holds the gorm repositories behind the tutoring engine.
package tutor

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrVersionConflict means a versioned write lost a race with another writer.
var ErrVersionConflict = errors.New("version conflict")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func conflictOr(err error) error {
	if isUniqueViolation(err) {
		return ErrVersionConflict
	}
	return err
}
