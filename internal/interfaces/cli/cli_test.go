package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PatentGym/internal/config"
	"github.com/turtacn/PatentGym/internal/infrastructure/monitoring/logging"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := map[string]bool{}
	for _, sub := range root.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["corpus"])
	assert.True(t, names["evaluate"])
}

func TestRootCommandGlobalFlags(t *testing.T) {
	root := NewRootCommand()

	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestEvaluateRejectsUnknownType(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"evaluate", "--type", "obviousness", "some claim"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown evaluation type")
}

func TestCorpusLoadRequiresPath(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"corpus", "load"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no corpus path")
}

func TestCorpusLoadValidateOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.yaml")
	data := `statutes:
  - number: "제29조"
    title: "특허요건"
    content: "산업상 이용할 수 있는 발명으로서 신규성을 갖추어야 한다."
    category: "특허법"
precedents:
  - case_number: "2020후1234"
    court: "대법원"
    case_type: "진보성"
    summary: "통상의 기술자가 용이하게 도출할 수 없는 구성이다."
    outcome: "진보성 인정"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	out := new(bytes.Buffer)
	root := NewRootCommand()
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"corpus", "load", "--path", path, "--validate-only"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "1 statutes")
	assert.Contains(t, out.String(), "1 precedents")
}

func TestLoadConfigFallsBackToEnv(t *testing.T) {
	opts := &rootOptions{}

	// Run from a directory without a patentgym.yaml.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
}

func TestLoadConfigAppliesLogLevelOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	opts := &rootOptions{configPath: path, logLevel: "debug"}
	cfg, err := opts.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestBuildApplicationWiresCoreComponents(t *testing.T) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Metrics.Enabled = false
	cfg.Cache.Enabled = true
	cfg.Kafka.Enabled = false
	cfg.LLM.Enabled = false

	app, err := BuildApplication(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Index)
	assert.NotNil(t, app.Embedder)
	assert.NotNil(t, app.RAG)
	assert.NotNil(t, app.Service)
	assert.NotNil(t, app.Server)
	assert.Nil(t, app.Provider, "LLM disabled should leave provider nil")
}
