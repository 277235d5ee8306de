package database

import (
	"fmt"
	"time"

	"smartpos/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection opens a pool for driver (postgres, mysql or sqlite) and
// migrates the schema.
func NewConnection(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(log),
	})
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// One connection serializes writers instead of surfacing SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		log.WithError(err).Warn("failed to auto-migrate models")
	}
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.Product{},
		&model.Customer{},
		&model.InventoryTransaction{},
		&model.InventoryCount{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Purchase{},
		&model.PurchaseItem{},
		&model.Return{},
		&model.AuditLog{},
		&model.SystemSetting{},
		&model.Promotion{},
	)
}

func newGormLogger(log *logrus.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if log == nil {
		return gormlogger.Default.LogMode(level)
	}
	if log.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return gormlogger.New(log, gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}
