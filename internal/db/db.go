package db

import (
	"fmt"
	"socialnet/internal/logger"
	"socialnet/internal/models"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init opens the database named by dsn, migrates the schema and stores the
// handle in DB.
func Init(dsn string) (*gorm.DB, error) {
	conn, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	logger.Info.Println("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	logger.Info.Println("Database migration completed")

	DB = conn
	return conn, nil
}

// Open picks the dialect from dsn: postgres URLs and key=value DSNs go to
// PostgreSQL, everything else is treated as a SQLite file path.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	}

	if !IsPostgres(dsn) {
		conn, err := gorm.Open(sqlite.Open(sqliteDSN(dsn)), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
		}
		return conn, nil
	}

	// Heroku style URLs use the postgres:// scheme.
	if strings.HasPrefix(dsn, "postgres://") {
		dsn = "postgresql://" + strings.TrimPrefix(dsn, "postgres://")
	}

	var last error
	for i := 0; i < 5; i++ {
		conn, err := gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			sqlDB, err := conn.DB()
			if err != nil {
				return nil, err
			}
			sqlDB.SetMaxOpenConns(20)
			sqlDB.SetMaxIdleConns(5)
			sqlDB.SetConnMaxLifetime(30 * time.Minute)
			return conn, nil
		}
		last = err
		logger.Warn.Printf("postgres not ready (attempt %d): %v", i+1, err)
		time.Sleep(time.Duration(1<<i) * time.Second)
	}
	return nil, fmt.Errorf("open postgres: %w", last)
}

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// sqliteDSN turns on foreign keys and a busy timeout unless the caller set
// pragmas already.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.Like{},
	)
}
