package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewLedgerStore(t *testing.T) {
	pool := &pgxpool.Pool{}
	store := NewLedgerStore(pool)
	assert.NotNil(t, store)
}
