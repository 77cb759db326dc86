package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("127.0.0.1", 3306, "root", "pw", "story")
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 3306, cfg.Port)
	assert.Equal(t, 10, cfg.MaxConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
}

func TestDSN(t *testing.T) {
	cfg := DefaultConfig("db.internal", 3307, "app", "s3cret", "story")
	assert.Equal(t, "app:s3cret@tcp(db.internal:3307)/story?parseTime=true", cfg.DSN())
}

func TestDSN_DefaultPort(t *testing.T) {
	cfg := &Config{Host: "localhost", User: "root"}
	assert.Equal(t, "root:@tcp(localhost:3306)/?parseTime=true", cfg.DSN())
}
