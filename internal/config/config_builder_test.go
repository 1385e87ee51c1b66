package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_EmptyBuilder verifies that building with no configs returns a
// zero-value StructuredConfig.
func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

// TestBuild_PropagatesBuilderError verifies that a pre-set b.err is wrapped
// and returned, with nil config.
func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_MergesMultipleConfigs verifies that fields from multiple configs
// are merged into a single result.
func TestBuild_MergesMultipleConfigs(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{Version: "1.0.0"}},
		&StructuredConfig{App: App{BusinessID: "biz-1"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "biz-1", cfg.App.BusinessID)
}

// TestBuild_FirstSourceWins verifies that a field set by an earlier source is
// not overwritten by a later one.
func TestBuild_FirstSourceWins(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{Storage: Storage{Local: Local{Engine: EngineBolt}}},
		&StructuredConfig{Storage: Storage{Local: Local{Engine: EngineSQLite, Path: "from-file.db"}}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, EngineBolt, cfg.Storage.Local.Engine)
	assert.Equal(t, "from-file.db", cfg.Storage.Local.Path)
}

// TestBuild_RejectsNegativeRetries verifies structured validation.
func TestBuild_RejectsNegativeRetries(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{Queue: Queue{MaxRetries: -1}})

	_, err := b.build()
	assert.ErrorIs(t, err, ErrInvalidQueueConfigs)
}

// ── withEnv ───────────────────────────────────────────────────────────────────

// TestWithEnv_ReturnsBuilder verifies the fluent interface.
func TestWithEnv_ReturnsBuilder(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withEnv())
}

// TestWithEnv_ReadsEnvVars verifies that environment variables are picked up.
func TestWithEnv_ReadsEnvVars(t *testing.T) {
	setEnvVars(t, map[string]string{
		"APP_VERSION":     "env-version",
		"APP_BUSINESS_ID": "env-biz",
	})

	b := newConfigBuilder()
	b.withEnv()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-version", b.configs[0].App.Version)
	assert.Equal(t, "env-biz", b.configs[0].App.BusinessID)
}

// TestWithEnv_SetsErrorOnBadValue verifies that parse failures are collected.
func TestWithEnv_SetsErrorOnBadValue(t *testing.T) {
	setEnvVars(t, map[string]string{"QUEUE_MAX_RETRIES": "x"})

	b := newConfigBuilder()
	b.withEnv()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

// TestWithFlags_AppendsParsedFlags verifies that flags are parsed from the
// given args.
func TestWithFlags_AppendsParsedFlags(t *testing.T) {
	b := newConfigBuilder()
	assert.Same(t, b, b.withFlags([]string{"-business-id", "flag-biz"}))

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "flag-biz", b.configs[0].App.BusinessID)
}

// TestWithFlags_SetsErrorOnBadFlag verifies that parse failures are collected.
func TestWithFlags_SetsErrorOnBadFlag(t *testing.T) {
	b := newConfigBuilder()
	b.withFlags([]string{"-max-retries", "x"})

	assert.Error(t, b.err)
}

// TestFlagsOverrideEnv verifies the flags > env precedence.
func TestFlagsOverrideEnv(t *testing.T) {
	setEnvVars(t, map[string]string{"APP_BUSINESS_ID": "env-biz"})

	cfg, err := newConfigBuilder().
		withFlags([]string{"-business-id", "flag-biz"}).
		withEnv().
		build()

	require.NoError(t, err)
	assert.Equal(t, "flag-biz", cfg.App.BusinessID)
}

// ── withFile ──────────────────────────────────────────────────────────────────

// TestWithFile_NoOp_WhenNoPathSet verifies that withFile does nothing when
// no config has a FilePath.
func TestWithFile_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	assert.Same(t, b, b.withFile())

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

// TestWithFile_AppendsConfig_WhenValidFile verifies that a valid JSON file is
// parsed and appended.
func TestWithFile_AppendsConfig_WhenValidFile(t *testing.T) {
	payload := StructuredFileConfig{}
	payload.App.Version = "json-version"
	payload.App.TokenIssuer = "json-issuer"
	path := writeTempJSONConfig(t, payload)

	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{FilePath: path})
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "json-version", b.configs[1].App.Version)
	assert.Equal(t, "json-issuer", b.configs[1].App.TokenIssuer)
}

// TestWithFile_SetsError_WhenFileNotFound verifies that a missing file path
// sets b.err.
func TestWithFile_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		FilePath: "/nonexistent/config.json",
	})
	b.withFile()

	assert.Error(t, b.err)
}

// TestWithFile_UsesFirstPath verifies that the path of the highest priority
// source is used.
func TestWithFile_UsesFirstPath(t *testing.T) {
	first := StructuredFileConfig{}
	first.App.Version = "first"
	second := StructuredFileConfig{}
	second.App.Version = "second"

	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{FilePath: ""},
		&StructuredConfig{FilePath: writeTempJSONConfig(t, first)},
		&StructuredConfig{FilePath: writeTempJSONConfig(t, second)},
	)
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 4)
	assert.Equal(t, "first", b.configs[3].App.Version)
}

// TestWithFile_LowestPriority verifies that values from the file only fill
// fields no other source set.
func TestWithFile_LowestPriority(t *testing.T) {
	path := writeTempFile(t, "agent.yaml", "app:\n  business_id: file-biz\n  version: 0.9.0\n")

	cfg, err := newConfigBuilder().
		withFlags([]string{"-config", path, "-business-id", "flag-biz"}).
		withFile().
		build()

	require.NoError(t, err)
	assert.Equal(t, "flag-biz", cfg.App.BusinessID)
	assert.Equal(t, "0.9.0", cfg.App.Version)
}
