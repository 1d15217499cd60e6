package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"audit-log-search/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: "3306", User: "audit", Password: "secret", Name: "search"})
	assert.Equal(t, "audit:secret@tcp(db:3306)/search?charset=utf8mb4&parseTime=True&loc=UTC", dsn)
}
