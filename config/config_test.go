package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("MUX_TIMEOUT", "30s")

	s := Load()
	assert.Equal(t, "9000", s.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.CORSOrigins)
	assert.Equal(t, "s3", s.StorageDriver)
	assert.Equal(t, 30*time.Second, s.MuxTimeout)
	assert.Equal(t, "@every 5m", s.CleanupSchedule)
	assert.Equal(t, 5, s.CleanupMaxAttempts)
	assert.Equal(t, "https://api.mux.com", s.MuxBaseURL)
}
