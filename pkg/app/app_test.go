package app

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-tryon/internal/config"
	"github.com/teslashibe/go-tryon/pkg/landmarks"
	"github.com/teslashibe/go-tryon/pkg/tracking"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no port", func(c *Config) { c.Port = "" }, "Port"},
		{"bad preset", func(c *Config) { c.Preset = "jittery" }, "Preset"},
		{"smooth preset", func(c *Config) { c.Preset = "smooth" }, ""},
		{"bad camera", func(c *Config) { c.Camera = true; c.CameraConfig.Width = 10 }, "CameraConfig"},
		{"camera without model", func(c *Config) { c.Camera = true; c.ModelPath = "" }, "ModelPath"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestConfig_LoadEnvConfig(t *testing.T) {
	t.Setenv(config.EnvPort, "9000")
	t.Setenv(config.EnvPreset, "responsive")
	t.Setenv(config.EnvCamera, "1")
	t.Setenv(config.EnvModelPath, "")
	t.Setenv(config.EnvLogLevel, "")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadEnvConfig())
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.Camera)
	assert.Equal(t, 1, cfg.CameraConfig.Device)
	assert.Equal(t, config.DefaultModelPath, cfg.ModelPath)

	tc, err := cfg.Tracking()
	require.NoError(t, err)
	assert.Equal(t, tracking.ResponsiveConfig().Alpha, tc.Alpha)

	t.Setenv(config.EnvCamera, "front")
	assert.Error(t, cfg.LoadEnvConfig())
}

func newApp(t *testing.T, mod func(*Config)) *App {
	t.Helper()
	cfg := DefaultConfig()
	if mod != nil {
		mod(&cfg)
	}
	a, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, a.Init())
	return a
}

func TestApp_Init(t *testing.T) {
	a := newApp(t, nil)
	assert.True(t, a.Session().Active())
	assert.NotNil(t, a.Server())

	// Remote detector frames reach the session
	a.observe("test", landmarks.EmptyFrame(640, 480))
	assert.Equal(t, uint64(1), a.Session().GetStats().FramesObserved)

	resp, err := a.Server().App().Test(httptest.NewRequest("GET", "/api/status", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestApp_NoAutoStart(t *testing.T) {
	a := newApp(t, func(c *Config) { c.AutoStart = false })
	assert.False(t, a.Session().Active())
}

func TestApp_MissingModelKeepsServing(t *testing.T) {
	a := newApp(t, func(c *Config) {
		c.Camera = true
		c.ModelPath = "testdata/does-not-exist.onnx"
	})
	assert.Nil(t, a.source)
	assert.NotNil(t, a.cameraManager)

	resp, err := a.Server().App().Test(httptest.NewRequest("GET", "/api/camera", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	a := newApp(t, func(c *Config) { c.Port = "18200" })
	defer a.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// The session loop publishes poses once running
	assert.Eventually(t, func() bool {
		return a.Session().GetStats().Ticks > 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_RunWithoutInit(t *testing.T) {
	a, err := New(DefaultConfig())
	require.NoError(t, err)
	assert.Error(t, a.Run(context.Background()))
}
