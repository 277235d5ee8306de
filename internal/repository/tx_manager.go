package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smartpos/internal/apperror"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type contextKey string

const txKey contextKey = "gorm_tx"

// TransactionManager manages database transactions via context injection.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

// RunInTx runs fn in one unit of work. Any error rolls everything back;
// lock contention surfaces as a retryable apperror.KindContention.
func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if _, nested := ctx.Value(txKey).(*gorm.DB); nested {
		return fn(ctx)
	}
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, txKey, tx)
		return fn(txCtx)
	})
	if err != nil && !errors.As(err, new(*apperror.Error)) && isContention(err) {
		return apperror.Wrap(apperror.KindContention, err, "resource busy, retry the operation")
	}
	return err
}

// GetDB extracts the transaction DB from context if present, otherwise returns root DB.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}

// mapError classifies storage errors for the service layer.
func mapError(err error, entity string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound("%s not found", entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Wrap(apperror.KindConflict, err, entity+" already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperror.Wrap(apperror.KindConflict, err, entity+" is still referenced")
	case isContention(err):
		return apperror.Wrap(apperror.KindContention, err, entity+" is locked by another operation")
	}
	return fmt.Errorf("%s: %w", entity, err)
}

// isContention recognises lock-wait timeouts, deadlocks and serialization failures.
func isContention(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1205 || myErr.Number == 1213
	}
	return strings.Contains(err.Error(), "database is locked")
}
