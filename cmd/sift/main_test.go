package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/sift/pkg/classifier"
	"github.com/umputun/sift/pkg/config"
	"github.com/umputun/sift/pkg/llm"
	"github.com/umputun/sift/pkg/repository"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return port
}

func TestRun_MissingConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: "non-existent-config.yml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_InvalidConfig(t *testing.T) {
	cfgFile := writeFile(t, t.TempDir(), "invalid.yml", "invalid: yaml: content: [")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: cfgFile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestRun_StoreFailure(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", fmt.Sprintf(`
database:
  dsn: "file:%s/missing/sift.db?mode=rw"
`, dir))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := run(ctx, Opts{Config: cfgFile})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize store")
}

func TestRun_ServerStartStop(t *testing.T) {
	dir := t.TempDir()
	port := freePort(t)
	cfgFile := writeFile(t, dir, "config.yml", fmt.Sprintf(`
server:
  listen: "127.0.0.1:%d"
database:
  dsn: "file:%s/sift.db?_txlock=immediate"
refresh:
  schedule: "@every 1h"
  run_on_start: false
`, port, dir))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, Opts{Config: cfgFile}) }()

	var resp *http.Response
	require.Eventually(t, func() bool {
		var err error
		resp, err = http.Get(fmt.Sprintf("http://127.0.0.1:%d/ping", port))
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "pong", string(body))

	feedsResp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/v1/feeds", port))
	require.NoError(t, err)
	defer feedsResp.Body.Close()
	assert.Equal(t, http.StatusOK, feedsResp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown timeout")
	}
	assert.FileExists(t, filepath.Join(dir, "sift.db"))
}

func TestMakeClassifier(t *testing.T) {
	dir := t.TempDir()
	repos, err := repository.NewRepositories(context.Background(),
		repository.Config{DSN: "file:" + filepath.Join(dir, "test.db") + "?_txlock=immediate"}, lgr.NoOp)
	require.NoError(t, err)
	defer repos.Close()
	labelsFile := writeFile(t, dir, "labels.json", `["Business", "Sports", "Tech"]`)

	t.Run("disabled", func(t *testing.T) {
		cfg := config.Default()
		clf, err := makeClassifier(context.Background(), cfg, repos.Label, lgr.NoOp)
		require.NoError(t, err)
		assert.IsType(t, classifier.Unavailable{}, clf)
		_, err = repos.Label.LatestLabelSet(context.Background())
		require.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("model files missing", func(t *testing.T) {
		cfg := config.Default()
		cfg.Classifier.Type = config.ClassifierModel
		cfg.Classifier.Labels = labelsFile
		cfg.Classifier.Tokenizer = filepath.Join(dir, "tokenizer.json")
		cfg.Classifier.Model = filepath.Join(dir, "model.json")

		clf, err := makeClassifier(context.Background(), cfg, repos.Label, lgr.NoOp)
		require.NoError(t, err)
		assert.IsType(t, classifier.Unavailable{}, clf)

		set, err := repos.Label.LatestLabelSet(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, set.Version)
		assert.Equal(t, []string{"Business", "Sports", "Tech"}, set.Labels)
	})

	t.Run("llm", func(t *testing.T) {
		cfg := config.Default()
		cfg.Classifier.Type = config.ClassifierLLM
		cfg.Classifier.Labels = labelsFile
		cfg.Classifier.LLM.Endpoint = "http://127.0.0.1:1/v1"
		cfg.Classifier.LLM.Model = "gpt-4o-mini"

		clf, err := makeClassifier(context.Background(), cfg, repos.Label, lgr.NoOp)
		require.NoError(t, err)
		assert.IsType(t, &llm.Classifier{}, clf)

		// same labels again, no new version
		set, err := repos.Label.LatestLabelSet(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, set.Version)
	})

	t.Run("bad labels file", func(t *testing.T) {
		cfg := config.Default()
		cfg.Classifier.Type = config.ClassifierLLM
		cfg.Classifier.Labels = writeFile(t, dir, "bad.json", `["A", "A"]`)
		_, err := makeClassifier(context.Background(), cfg, repos.Label, lgr.NoOp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate label")
	})
}

func TestSetupLog(t *testing.T) {
	t.Run("debug mode enabled", func(t *testing.T) {
		SetupLog(true)
	})

	t.Run("debug mode disabled", func(t *testing.T) {
		SetupLog(false)
	})

	t.Run("with secrets", func(t *testing.T) {
		SetupLog(true, "secret1", "secret2")
	})
}
