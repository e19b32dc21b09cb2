package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-portal/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "portal", Password: "pw", Name: "portal", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=portal password=pw dbname=portal sslmode=disable", dsn)
}
