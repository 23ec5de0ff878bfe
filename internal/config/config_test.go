package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Empty(t, cfg.Token)
	assert.Equal(t, 4, cfg.MaxDepth)
	assert.Equal(t, "127.0.0.1:8501", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
}

func TestLoadEnvironmentFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIGMA_TOKEN", " figd_secret ")
	t.Setenv("FIGMA_FILE_KEY", "KEY123")
	t.Setenv("FIGMA_NODE_IDS", "1:2,3:4")
	t.Setenv("FIGMA_MAX_DEPTH", "6")
	t.Setenv("FIGMA_META_ADDR", ":9000")
	t.Setenv("FIGMA_API_BASE_URL", "http://proxy.local/v1")

	v := viper.New()
	SetDefaults(v)

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "figd_secret", cfg.Token)
	assert.Equal(t, "KEY123", cfg.FileKey)
	assert.Equal(t, "1:2,3:4", cfg.NodeIDs)
	assert.Equal(t, 6, cfg.MaxDepth)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "http://proxy.local/v1", cfg.APIBaseURL)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("FIGMA_TOKEN", "from-env")
	t.Setenv("FIGMA_MAX_DEPTH", "6")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("token", "", "")
	fs.Int("depth", 4, "")
	require.NoError(t, fs.Parse([]string{"--token", "from-flag"}))

	v := viper.New()
	SetDefaults(v)
	require.NoError(t, BindFlags(v, fs, map[string]string{
		"token":     "token",
		"max_depth": "depth",
		"file_key":  "not-registered",
	}))

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.Token, "set flag wins over env")
	assert.Equal(t, 6, cfg.MaxDepth, "env wins over an unset flag")
}

func TestLoadRejectsOutOfRangeDepth(t *testing.T) {
	for _, depth := range []string{"0", "9", "-1"} {
		t.Run(depth, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("FIGMA_MAX_DEPTH", depth)

			v := viper.New()
			SetDefaults(v)

			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "max_depth must be between 1 and 8")
		})
	}
}

func TestValidateLoggerFormat(t *testing.T) {
	cfg := &Config{MaxDepth: 3, Server: ServerConfig{Addr: ":1"}, Logger: LoggerConfig{Format: "xml"}}
	assert.Error(t, cfg.Validate())

	cfg.Logger.Format = "json"
	assert.NoError(t, cfg.Validate())

	cfg.Server.Addr = ""
	assert.Error(t, cfg.Validate())
}
