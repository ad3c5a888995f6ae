// Package gormdb keeps the ledger tables in one SQL table through gorm, so any gorm
// dialect can back it. SQLite and MySQL are wired.
package gormdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"vyapar/backend/internal/store"
)

// rowModel stores one ledger row. Cells hold the row values as a JSON array in header order.
type rowModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Sheet     string `gorm:"size:32;index;not null"`
	Cells     string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (rowModel) TableName() string { return "ledger_rows" }

type Store struct {
	db   *gorm.DB
	name string
}

// NewSQLite opens (creating if needed) a single-file ledger. Use ":memory:" for a throwaway store.
func NewSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, err
		}
	}
	s, err := Open(sqlite.Open(path), "sqlite")
	if err != nil {
		return nil, err
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	return s, nil
}

// NewMySQL connects with a go-sql-driver DSN, e.g. "user:pass@tcp(host:3306)/vyapar?parseTime=true".
func NewMySQL(dsn string) (*Store, error) {
	s, err := Open(mysql.Open(dsn), "mysql")
	if err != nil {
		return nil, err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return s, nil
}

// Open migrates the row table on any gorm dialector. name prefixes error messages.
func Open(dialector gorm.Dialector, name string) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{Logger: log.Logger},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: open: %w", name, err)
	}
	if err := db.AutoMigrate(&rowModel{}); err != nil {
		return nil, fmt.Errorf("%s: migrate: %w", name, err)
	}
	return &Store{db: db, name: name}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Append(ctx context.Context, table store.Table, values []string) error {
	if !table.Valid() {
		return store.ErrUnknownTable
	}
	cells, err := json.Marshal(values)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&rowModel{Sheet: string(table), Cells: string(cells)}).Error; err != nil {
		return fmt.Errorf("%s: append %s: %w", s.name, table, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, table store.Table) ([]store.Row, error) {
	if !table.Valid() {
		return nil, store.ErrUnknownTable
	}
	var models []rowModel
	if err := s.db.WithContext(ctx).Where("sheet = ?", string(table)).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("%s: scan %s: %w", s.name, table, err)
	}

	grid := make([][]string, 0, len(models)+1)
	grid = append(grid, store.Headers(table))
	for _, m := range models {
		var cells []string
		if err := json.Unmarshal([]byte(m.Cells), &cells); err != nil {
			return nil, fmt.Errorf("%s: row %d of %s: %w", s.name, m.ID, table, err)
		}
		grid = append(grid, cells)
	}
	return store.RowsFromValues(grid), nil
}

func (s *Store) UpdateCell(ctx context.Context, table store.Table, rowIndex int, column int, value string) error {
	if err := store.CheckCell(table, rowIndex, column, rowIndex+1); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m rowModel
		err := tx.Where("sheet = ?", string(table)).Order("id").Offset(rowIndex).Limit(1).First(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.ErrRowOutOfRange
		}
		if err != nil {
			return fmt.Errorf("%s: update %s: %w", s.name, table, err)
		}

		var cells []string
		if err := json.Unmarshal([]byte(m.Cells), &cells); err != nil {
			return err
		}
		for len(cells) <= column {
			cells = append(cells, "")
		}
		cells[column] = value
		encoded, err := json.Marshal(cells)
		if err != nil {
			return err
		}
		return tx.Model(&m).Update("cells", string(encoded)).Error
	})
}
