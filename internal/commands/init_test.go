package commands_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banketl/banketl/internal/config"
	"github.com/banketl/banketl/internal/model"
	"github.com/banketl/banketl/internal/progress"
	"github.com/banketl/banketl/internal/rates"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "banketl-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "banketl")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/banketl")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runBanketl(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = dir
	cmd.Env = cleanEnv()
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// cleanEnv drops BANKETL_* variables so the host cannot steer a test.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, config.EnvPrefix) {
			env = append(env, kv)
		}
	}
	return env
}

func TestInit_CreatesFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := runBanketl(t, dir, "init", dir)
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, "banketl.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	table, err := rates.Load(filepath.Join(dir, "exchange_rate.csv"))
	require.NoError(t, err)
	require.NoError(t, table.Require(model.TargetCurrencies...))
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, err := runBanketl(t, dir, "init", dir)
	require.NoError(t, err)

	out, err := runBanketl(t, dir, "init", dir)
	require.Error(t, err)
	assert.Contains(t, out, "already exists")

	_, err = runBanketl(t, dir, "init", dir, "--force")
	require.NoError(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runBanketl(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:")
}

func newSourceServer(t *testing.T) *httptest.Server {
	t.Helper()
	html, err := os.ReadFile(filepath.Join("..", "..", "testdata", "largest_banks.html"))
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(html)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_FullPipeline(t *testing.T) {
	srv := newSourceServer(t)
	dir := t.TempDir()
	_, err := runBanketl(t, dir, "init", dir)
	require.NoError(t, err)

	out, err := runBanketl(t, dir, "run", "--url", srv.URL, "--log-level", "off")
	require.NoError(t, err, "run failed: %s", out)

	assert.Contains(t, out, `SELECT * FROM "Largest_banks"`)
	assert.Contains(t, out, `SELECT AVG(MC_GBP_Billion) FROM "Largest_banks"`)
	assert.Contains(t, out, `SELECT Name FROM "Largest_banks" LIMIT 5`)
	assert.Contains(t, out, "JPMorgan Chase")
	assert.NotContains(t, out, "Not From The First Table")
	assert.Contains(t, out, "Loaded 6 banks")

	data, err := os.ReadFile(filepath.Join(dir, "Largest_banks_data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 7, "header + 6 banks")
	assert.Equal(t, "0,JPMorgan Chase,432.92,346.34,402.62,35910.71,13377.23", lines[1])

	_, err = os.Stat(filepath.Join(dir, "Banks.db"))
	require.NoError(t, err)

	entries, err := progress.New(filepath.Join(dir, "code_log.txt")).Read()
	require.NoError(t, err)
	assert.Len(t, entries, len(progress.Milestones))
}

func TestRun_EnvOverride(t *testing.T) {
	srv := newSourceServer(t)
	dir := t.TempDir()
	_, err := runBanketl(t, dir, "init", dir)
	require.NoError(t, err)

	cmd := exec.Command(binaryPath, "run", "--log-level", "off")
	cmd.Dir = dir
	cmd.Env = append(cleanEnv(), "BANKETL_URL="+srv.URL, "BANKETL_TABLE=env_banks")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "run failed: %s", out)
	assert.Contains(t, string(out), `FROM "env_banks"`)
}

func TestRun_FetchFailureExitsNonZero(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	_, err := runBanketl(t, dir, "init", dir)
	require.NoError(t, err)

	out, err := runBanketl(t, dir, "run", "--url", srv.URL)
	require.Error(t, err)
	assert.Contains(t, out, "extract:")
	assert.NoFileExists(t, filepath.Join(dir, "Largest_banks_data.csv"))
}

func TestRun_MissingConfigFlag(t *testing.T) {
	dir := t.TempDir()
	out, err := runBanketl(t, dir, "run", "--config", filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "reading config")
}

func TestQuery_AfterRun(t *testing.T) {
	srv := newSourceServer(t)
	dir := t.TempDir()
	_, err := runBanketl(t, dir, "init", dir)
	require.NoError(t, err)
	_, err = runBanketl(t, dir, "run", "--url", srv.URL, "--log-level", "off")
	require.NoError(t, err)

	out, err := runBanketl(t, dir, "query", "--log-level", "off")
	require.NoError(t, err, "query failed: %s", out)
	assert.Contains(t, out, "Bank of America")
	assert.Contains(t, out, "AVG(MC_GBP_Billion)")
}

func TestQuery_NoDatabase(t *testing.T) {
	dir := t.TempDir()
	out, err := runBanketl(t, dir, "query")
	require.Error(t, err)
	assert.Contains(t, out, "connect:")
}
