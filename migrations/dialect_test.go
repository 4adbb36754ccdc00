package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBind(t *testing.T) {
	SetDialect("postgres")
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b = $2", bind("SELECT 1 WHERE a = ? AND b = ?"))

	SetDialect("sqlite3")
	defer SetDialect("postgres")
	assert.Equal(t, "SELECT 1 WHERE a = ?", bind("SELECT 1 WHERE a = ?"))
}
