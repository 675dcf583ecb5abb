package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether the provided error is a unique constraint
// violation matching any of the given hints. On postgres a hint matches the
// violated constraint name; sqlite (used by tests) does not surface constraint
// names, so hints are also matched against the driver message, which lists the
// violated columns. With no hints, any unique violation matches.
func IsUniqueViolation(err error, hints ...string) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return false
		}
		return matchesHints(pgErr.ConstraintName, pgErr.Message, hints)
	}

	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") &&
		!strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	return matchesHints("", msg, hints)
}

func matchesHints(constraint, message string, hints []string) bool {
	if len(hints) == 0 {
		return true
	}
	for _, hint := range hints {
		if hint == "" {
			continue
		}
		if constraint == hint || strings.Contains(message, hint) {
			return true
		}
	}
	return false
}
