package config

import (
	"testing"
	"time"

	"tenderpulse-backend/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, 2*time.Minute, cfg.EvaluationTimeout)
	assert.Equal(t, 4, cfg.EvaluationWorkers)
	assert.Equal(t, int64(52428800), cfg.MaxUploadSize)
	assert.Equal(t, "local", cfg.StorageType)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EVALUATION_TIMEOUT", "30s")
	t.Setenv("EVALUATION_WORKERS", "8")
	t.Setenv("STORAGE_TYPE", "s3")
	t.Setenv("AWS_S3_BUCKET", "tender-docs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.EvaluationTimeout)
	assert.Equal(t, 8, cfg.EvaluationWorkers)

	sc := cfg.StorageConfig()
	assert.Equal(t, storage.StorageTypeS3, sc.Type)
	assert.Equal(t, "tender-docs", sc.S3Bucket)
}
