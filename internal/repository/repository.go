package repository

import (
	"errors"
	"strings"

	"smart-inventory/internal/model"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrDuplicate = errors.New("duplicate key")

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&model.User{}, "Roles", &model.UserRole{}); err != nil {
		return err
	}
	return db.AutoMigrate(
		&model.Supplier{},
		&model.Product{},
		&model.StockMovement{},
		&model.Role{},
		&model.User{},
		&model.UserRole{},
	)
}

// IsNotFound reports gorm's record-not-found sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// translate maps unique violations to ErrDuplicate, whichever driver raised them.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicate
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicate
	}
	return err
}

// forUpdate adds a row lock on drivers that support one.
func forUpdate(db *gorm.DB, table string) *gorm.DB {
	locking := clause.Locking{Strength: "UPDATE"}
	if table != "" {
		locking.Table = clause.Table{Name: table}
	}
	return db.Clauses(locking)
}
