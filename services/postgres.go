package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/colortap-studio/colortap_api/model"
	"github.com/colortap-studio/colortap_api/shared"
)

// SQL_SVC is the shared slot for the database service. The runtime wires
// exactly one of PostgresService or SqliteService under this id, chosen by
// the DB_DRIVER env var.
const SQL_SVC = "sql_svc"

// SqlService is what the rest of the services see of the database layer.
type SqlService interface {
	Db() *gorm.DB
	HandleError(err error) error
}

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	dsn string
}

func (ds PostgresService) Id() string {
	return SQL_SVC
}

func (ds *PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.dsn = os.Getenv("DATABASE_URL")
	if ds.dsn == "" {
		// Fallback to individual environment variables
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "colortap_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Error),
			TranslateError: true,
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	err = ds.db.AutoMigrate(gameModels()...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	if ds.db != nil {
		if sqlDB, err := ds.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (ds *PostgresService) HandleError(err error) error {
	return translateSqlError(err)
}

func gameModels() []interface{} {
	return []interface{}{
		&model.User{},
		&model.UserStats{},
		&model.GameSession{},
	}
}

// translateSqlError maps database failures onto the AppError taxonomy so
// handlers can hand them to the fiber error handler unchanged.
func translateSqlError(err error) error {
	if err == nil {
		return nil
	}

	var statusErr *shared.AppError

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusErr = shared.NewNotFoundError(err, "Not Found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusErr = shared.NewConflictError(err, "Conflict")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusErr = shared.NewBadRequestError(err, "Invalid reference")
	default:
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusErr = shared.NewConflictError(err, "Conflict")
		} else {
			statusErr = shared.NewInternalError(err, "Storage error")
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusErr.StatusCode,
		"error":       err.Error(),
	})

	if statusErr.StatusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return statusErr
}
