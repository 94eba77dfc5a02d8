package gorm

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/config"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

// NewGormLogger creates a gorm.Logger instance based on the configured log level.
func NewGormLogger(level string) gorm_logger.Interface {
	var gormLevel gorm_logger.LogLevel
	switch config.LogLevel(strings.ToUpper(level)) {
	case config.LogLevelError:
		gormLevel = gorm_logger.Error
	case config.LogLevelWarn:
		gormLevel = gorm_logger.Warn
	case config.LogLevelInfo, config.LogLevelDebug:
		gormLevel = gorm_logger.Info
	default:
		gormLevel = gorm_logger.Silent
	}

	return gorm_logger.New(
		NewGormWriter(),
		gorm_logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// GormWriter redirects GORM log output to the application logger.
type GormWriter struct{}

// NewGormWriter creates a new instance of GormWriter.
func NewGormWriter() *GormWriter {
	return &GormWriter{}
}

// Printf implements the gorm logger Writer interface. Statement traces go to
// DEBUG, everything else to INFO.
func (w *GormWriter) Printf(format string, v ...interface{}) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	if isStatementTrace(msg) {
		logger.Debugf("[GORM] %s", msg)
		return
	}
	logger.Infof("[GORM] %s", msg)
}

func isStatementTrace(msg string) bool {
	if !strings.Contains(msg, "[") || !strings.Contains(msg, "]") {
		return false
	}
	for _, verb := range []string{"SELECT", "INSERT", "UPDATE", "DELETE"} {
		if strings.Contains(msg, verb) {
			return true
		}
	}
	return false
}

// gormConnection implements database.DBConnection over a *gorm.DB.
type gormConnection struct {
	db   *gorm.DB
	cfg  dbconfig.DatabaseConfig
	name string
}

// NewGormConnection wraps db as a named DBConnection.
func NewGormConnection(db *gorm.DB, cfg dbconfig.DatabaseConfig, name string) database.DBConnection {
	return &gormConnection{db: db, cfg: cfg, name: name}
}

func (c *gormConnection) Name() string                    { return c.name }
func (c *gormConnection) Type() string                    { return c.cfg.Type }
func (c *gormConnection) Config() dbconfig.DatabaseConfig { return c.cfg }
func (c *gormConnection) GormDB() *gorm.DB                { return c.db }

func (c *gormConnection) GetSQLDB() (*sql.DB, error) {
	return c.db.DB()
}

func (c *gormConnection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
