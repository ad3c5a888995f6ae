package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vyapar/backend/internal/store"
)

const defaultPrefix = "ledger_"

// Store keeps one text-column table per ledger table. Row order is the insertion order
// recorded in the position column.
type Store struct {
	db     *sql.DB
	prefix string
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	return open(ctx, databaseURL, defaultPrefix)
}

func open(ctx context.Context, databaseURL, prefix string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, prefix: prefix}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	for _, t := range store.Tables {
		cols := make([]string, 0, len(store.Headers(t)))
		for _, h := range store.Headers(t) {
			cols = append(cols, columnName(h)+` TEXT NOT NULL DEFAULT ''`)
		}
		stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			position BIGSERIAL PRIMARY KEY,
			%s
		)`, s.tableName(t), strings.Join(cols, ",\n\t\t\t"))
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: create %s: %w", t, err)
		}
	}
	return nil
}

func (s *Store) tableName(t store.Table) string {
	return pgx.Identifier{s.prefix + strings.ToLower(string(t))}.Sanitize()
}

func columnName(header string) string {
	return pgx.Identifier{strings.ReplaceAll(strings.ToLower(header), " ", "_")}.Sanitize()
}

func columnList(t store.Table) []string {
	headers := store.Headers(t)
	cols := make([]string, len(headers))
	for i, h := range headers {
		cols[i] = columnName(h)
	}
	return cols
}

func (s *Store) Append(ctx context.Context, table store.Table, values []string) error {
	if !table.Valid() {
		return store.ErrUnknownTable
	}
	cols := columnList(table)
	args := make([]any, len(cols))
	placeholders := make([]string, len(cols))
	for i := range cols {
		if i < len(values) {
			args[i] = values[i]
		} else {
			args[i] = ""
		}
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		s.tableName(table), strings.Join(cols, ", "), strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return fmt.Errorf("postgres: append %s: %w", table, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, table store.Table) ([]store.Row, error) {
	if !table.Valid() {
		return nil, store.ErrUnknownTable
	}
	cols := columnList(table)
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY position`,
		strings.Join(cols, ", "), s.tableName(table)))
	if err != nil {
		return nil, fmt.Errorf("postgres: scan %s: %w", table, err)
	}
	defer rows.Close()

	grid := [][]string{store.Headers(table)}
	for rows.Next() {
		cells := make([]string, len(cols))
		dest := make([]any, len(cols))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		grid = append(grid, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return store.RowsFromValues(grid), nil
}

func (s *Store) UpdateCell(ctx context.Context, table store.Table, rowIndex int, column int, value string) error {
	if err := store.CheckCell(table, rowIndex, column, rowIndex+1); err != nil {
		return err
	}
	name := s.tableName(table)
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s SET %s = $1
		WHERE position = (SELECT position FROM %s ORDER BY position OFFSET $2 LIMIT 1)
	`, name, columnList(table)[column], name), value, rowIndex)
	if err != nil {
		return fmt.Errorf("postgres: update %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrRowOutOfRange
	}
	return nil
}
