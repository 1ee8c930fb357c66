package configsdatabase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"aigc.wiki/configs"
	"aigc.wiki/configs/configslog"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var db *gorm.DB

// Open connects to the configured database without touching the package global.
func Open(cfg configs.DatabaseConfig, production bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		dialector = mysql.Open(dsn)
	case "sqlite":
		// Foreign keys are off by default in SQLite; Lora cascade depends on them.
		dialector = sqlite.Open(cfg.Path + "?_foreign_keys=on&_busy_timeout=5000")
	default:
		return nil, fmt.Errorf("configsdatabase: unsupported driver %q", cfg.Driver)
	}

	level := logger.Warn
	if production {
		level = logger.Error
	}
	gormLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  !production,
	})

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return conn, nil
}

// InitDB opens the connection and stores it for GetDB. Failure is fatal.
func InitDB(cfg configs.Config) {
	conn, err := Open(cfg.Database, cfg.IsProduction())
	if err != nil {
		configslog.Log.Fatal("Database connection failed",
			zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	db = conn
	configslog.SLog.Infof("Database connection established (%s)", cfg.Database.Driver)
}

// GetDB returns the connection opened by InitDB.
func GetDB() *gorm.DB {
	if db == nil {
		configslog.Log.Fatal("GetDB called before InitDB")
	}
	return db
}

// CloseDB closes the shared connection, if any.
func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		configslog.Log.Error("Could not obtain sql.DB for close", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		configslog.Log.Error("Database close failed", zap.Error(err))
		return
	}
	db = nil
	configslog.SLog.Info("Database connection closed")
}

// Ping checks the connection within the given context.
func Ping(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return errors.New("configsdatabase: nil connection")
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
