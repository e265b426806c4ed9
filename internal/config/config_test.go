package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1d", want: 24 * time.Hour},
		{in: `"7d"`, want: 7 * 24 * time.Hour},
		{in: "'1d'", want: 24 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: "0d", wantErr: true},
		{in: "xd", wantErr: true},
		{in: "-1h", wantErr: true},
		{in: "tomorrow", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTTL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "4000")
	t.Setenv("ENV", "Production")
	t.Setenv("EXPIRE_IN", "2d")
	t.Setenv("FACE_SERVICE_URL", "http://faces.local/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 48*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "aasrasewa", cfg.MongoDB)
	assert.Equal(t, StorageMongo, cfg.StorageDriver)
	assert.Equal(t, "inr", cfg.StripeCurrency)
	assert.Equal(t, "http://faces.local", cfg.FaceServiceURL)
	assert.InDelta(t, 0.6, cfg.FaceMatchThreshold, 1e-9)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, 127.0.0.1 ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "render-lb")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", "redis")
	_, err := Load()
	assert.Error(t, err)
}
