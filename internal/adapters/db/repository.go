// internal/adapters/db/repository.go
package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	pgUniqueViolation = "23505"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// baseRepository carries what every stock repository shares. lock is set
// for repositories bound to a transaction; their reads take row locks.
type baseRepository struct {
	q      Querier
	lock   bool
	logger *slog.Logger
}

func (b baseRepository) locking(query string) string {
	if b.lock {
		return query + " FOR UPDATE"
	}
	return query
}

func (b baseRepository) lockingSelect(qb squirrel.SelectBuilder) squirrel.SelectBuilder {
	if b.lock {
		return qb.Suffix("FOR UPDATE")
	}
	return qb
}

// writeError maps constraint races to a concurrent modification so the
// caller sees a conflict instead of an internal error.
func writeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%s: %w", op, domain.ErrConcurrentModification)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func versionCheck(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrentModification
	}
	return nil
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return data, nil
}

func unmarshalJSON(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode json column: %w", err)
	}
	return nil
}

func pageOf(p ports.PageParams) (page, size int, offset uint64) {
	page, size = p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size, uint64((page - 1) * size)
}

func orderBy(p ports.PageParams, columns map[string]string, fallback string) string {
	column, ok := columns[p.SortBy]
	if !ok {
		return fallback
	}
	if p.SortOrder == "asc" {
		return column + " ASC"
	}
	return column + " DESC"
}

func totalPages(total int64, size int) int {
	if size == 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
