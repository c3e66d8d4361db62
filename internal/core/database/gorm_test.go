package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMySQLDSN(t *testing.T) {
	got := normalizeMySQLDSN("jdbc:mysql://root:pw@db:3306/restaurant?useSSL=false&serverTimezone=UTC", "", "")
	assert.Equal(t, "root:pw@tcp(db:3306)/restaurant?charset=utf8mb4&loc=UTC&parseTime=true&tls=false", got)

	got = normalizeMySQLDSN("mysql://db:3306/restaurant?user=a&password=b", "app", "secret")
	assert.Equal(t, "app:secret@tcp(db:3306)/restaurant?charset=utf8mb4&parseTime=true", got)

	native := "root:pw@tcp(127.0.0.1:3306)/restaurant?parseTime=true"
	assert.Equal(t, native, normalizeMySQLDSN(native, "x", "y"))
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "root:****@tcp(db)/x", maskDSN("root:pw@tcp(db)/x"))
	assert.Equal(t, "file:test.db", maskDSN("file:test.db"))
}

func TestNewGormRejectsUnknownDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file:gorm_test?mode=memory&cache=shared", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)
	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
