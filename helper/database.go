package helper

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// DatabaseConfiguration holds the PostgreSQL connection parameters
type DatabaseConfiguration struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
	SSLMode  string
}

// Database wraps a sql.DB connection together with its logger
type Database struct {
	Name     string
	Instance *sql.DB
	Logger   *slog.Logger
}

// NewDatabase opens and pings a PostgreSQL connection using lib/pq.
func NewDatabase(name string, config *DatabaseConfiguration, logger *slog.Logger) (*Database, error) {
	if config == nil {
		return nil, NewError("database configuration validation", fmt.Errorf("configuration is nil"))
	}
	if logger == nil {
		logger = slog.Default()
	}

	sslMode := config.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, sslMode,
	)
	if config.Schema != "" {
		dsn += fmt.Sprintf(" search_path=%s", config.Schema)
	}

	instance, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, NewError("open database connection", err)
	}

	if err := instance.Ping(); err != nil {
		return nil, NewError("ping database", err)
	}

	logger.Info("Connected to database", slog.String("name", name), slog.String("host", config.Host), slog.String("port", config.Port))

	return &Database{
		Name:     name,
		Instance: instance,
		Logger:   logger,
	}, nil
}
