package mysql_test

import (
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbconfig "github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/database/gorm/mysql"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
)

func TestConnectionString(t *testing.T) {
	dsn := mysql.ConnectionString(dbconfig.DatabaseConfig{
		Type:     "mysql",
		Host:     "db.local",
		Port:     3307,
		Database: "catalog",
		User:     "loader",
		Password: "p@ss:word",
	})

	parsed, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "loader", parsed.User)
	assert.Equal(t, "p@ss:word", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.local:3307", parsed.Addr)
	assert.Equal(t, "catalog", parsed.DBName)
	assert.True(t, parsed.ParseTime)
	assert.Equal(t, time.UTC, parsed.Loc)
	assert.True(t, parsed.MultiStatements)
	assert.True(t, parsed.ClientFoundRows)
	assert.Contains(t, dsn, "clientFoundRows=true")
}

func TestConnectionStringDefaultsPort(t *testing.T) {
	parsed, err := gomysql.ParseDSN(mysql.ConnectionString(dbconfig.DatabaseConfig{Host: "db", Database: "x"}))
	require.NoError(t, err)
	assert.Equal(t, "db:3306", parsed.Addr)
}

func TestNewProviderType(t *testing.T) {
	p := mysql.NewProvider(config.NewConfig())
	assert.Equal(t, "mysql", p.Type())
}
