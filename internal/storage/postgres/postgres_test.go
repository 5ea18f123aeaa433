package postgres

import (
	"testing"

	"tabtab_auth/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		Postgres: config.Postgres{
			Host:     "db.internal",
			Port:     5433,
			User:     "tabtab",
			Password: "pw",
			DBName:   "tabtab",
			SSLMode:  "require",
		},
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=tabtab password=pw database=tabtab sslmode=require",
		dsn(cfg),
	)
}
