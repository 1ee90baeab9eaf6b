package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hackmaster/internal/config"
	"hackmaster/internal/domain"
	"hackmaster/internal/handler"
	"hackmaster/internal/hub"
	"hackmaster/internal/repository/sqlite"
	"hackmaster/internal/service"
	"hackmaster/internal/wordlist"
)

func setupGlobals(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func countLines(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return bytes.Count(data, []byte("\n"))
}

func TestGenerateWordlist(t *testing.T) {
	setupGlobals(t)
	dir := t.TempDir()
	gen := wordlist.New(wordlist.DefaultOptions())

	alice := writeFile(t, dir, "alice.yaml", "date: [\"1990-05-17\"]\nname: [Alice]\n")
	bob := writeFile(t, dir, "bob.json", `{"output_filename":"ignored","info_data":{"name":["Bob Lee"],"tel":["0912345678"]}}`)
	out := filepath.Join(dir, "out.txt")

	bobOnly := &wordlist.SliceSink{}
	bobStats, err := gen.Generate(domain.Facts{Names: []string{"Bob Lee"}, Phones: []string{"0912345678"}}, bobOnly)
	require.NoError(t, err)

	stats, err := generateWordlist(gen, []string{alice, bob}, out, false)
	require.NoError(t, err)
	assert.Equal(t, 522+bobStats.Accepted, stats.Accepted)
	assert.Equal(t, stats.Accepted, countLines(t, out))

	t.Run("replaces by default", func(t *testing.T) {
		_, err := generateWordlist(gen, []string{alice}, out, false)
		require.NoError(t, err)
		assert.Equal(t, 522, countLines(t, out))
	})

	t.Run("appends on request", func(t *testing.T) {
		_, err := generateWordlist(gen, []string{alice}, out, true)
		require.NoError(t, err)
		assert.Equal(t, 1044, countLines(t, out))
	})
}

func TestGenerateWordlistFollowsArgumentOrder(t *testing.T) {
	setupGlobals(t)
	dir := t.TempDir()
	gen := wordlist.New(wordlist.DefaultOptions())

	alice := writeFile(t, dir, "alice.yaml", "date: [\"1990-05-17\"]\nname: [Alice]\n")
	bob := writeFile(t, dir, "bob.json", `{"name":["Bob Lee"],"tel":["0912345678"],"SSID":"BobsHomeNet"}`)
	out := filepath.Join(dir, "out.txt")

	var want []string
	for _, facts := range []domain.Facts{
		{Dates: []string{"1990-05-17"}, Names: []string{"Alice"}},
		{Names: []string{"Bob Lee"}, Phones: []string{"0912345678"}, NetworkName: "BobsHomeNet"},
	} {
		buf := &wordlist.SliceSink{}
		_, err := gen.Generate(facts, buf)
		require.NoError(t, err)
		want = append(want, buf.Candidates...)
	}

	readLines := func() []string {
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	}

	for i := 0; i < 5; i++ {
		_, err := generateWordlist(gen, []string{alice, bob}, out, false)
		require.NoError(t, err)
		require.Equal(t, want, readLines(), "run %d", i)
	}

	assert.Equal(t, "BobsHomeNet", want[len(want)-1])
}

func TestGenerateWordlistRejectsBadFacts(t *testing.T) {
	setupGlobals(t)
	dir := t.TempDir()
	gen := wordlist.New(wordlist.DefaultOptions())
	out := filepath.Join(dir, "out.txt")

	good := writeFile(t, dir, "good.json", `{"name":["Alice"]}`)
	bad := writeFile(t, dir, "bad.json", `{"date":["17/05/1990"]}`)

	_, err := generateWordlist(gen, []string{good, bad}, out, false)
	require.ErrorIs(t, err, wordlist.ErrMalformedDate)
	assert.Contains(t, err.Error(), "bad.json")

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "output must not be created")

	_, err = generateWordlist(gen, []string{filepath.Join(dir, "missing.json")}, out, false)
	assert.Error(t, err)
}

func TestConfigInit(t *testing.T) {
	setupGlobals(t)
	path := filepath.Join(t.TempDir(), "hackmaster", "config.yaml")

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, runConfigInit(cmd, []string{path}))
	assert.Contains(t, out.String(), path)

	loaded, _, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.Addr, loaded.Server.Addr)

	assert.Error(t, runConfigInit(cmd, []string{path}), "refuses to overwrite")

	configForce = true
	defer func() { configForce = false }()
	assert.NoError(t, runConfigInit(cmd, []string{path}))
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))

	l, err = newLogger("warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))

	_, err = newLogger("loud", false)
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	setupGlobals(t)

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer repo.Close()

	dir := filepath.Join(t.TempDir(), "wordlists")
	svc, err := service.NewWordlistService(repo, wordlist.New(wordlist.DefaultOptions()), nil,
		service.WordlistOptions{Dir: dir, SampleLines: 10}, logger)
	require.NoError(t, err)

	router := newRouter(handler.NewWordlistHandler(svc, logger), hub.New(logger), dir)

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		return rec
	}

	rec := get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")

	rec = get("/WiFi/wordlist-generator")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Wordlist Generator")

	rec = get("/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/WiFi/wordlist-generator", rec.Header().Get("Location"))

	body := `{"output_filename":"alice","info_data":{"date":["1990-05-17"],"name":["Alice"]}}`
	post := httptest.NewRequest(http.MethodPost, "/WiFi/wordlist-generator", strings.NewReader(body))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, post)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = get("/static/wordlists/alice.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "19900517\n"))

	assert.Equal(t, http.StatusNotFound, get("/static/wordlists/").Code)
	assert.Equal(t, http.StatusNotFound, get("/static/wordlists/missing.txt").Code)
}
