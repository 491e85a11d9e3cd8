package database

import (
	"context"
	"database/sql"
	"fmt"
	"tecrank_admin/internal/platform/config"
	"tecrank_admin/internal/platform/logger"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

var DB *sql.DB

// Connect opens the pool used by the postgres session driver.
func Connect(ctx context.Context) error {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(10)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err = DB.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	logger.Log.Info("connected to PostgreSQL")
	return nil
}

func Close() {
	if DB != nil {
		DB.Close()
		logger.Log.Info("database connection closed")
	}
}
