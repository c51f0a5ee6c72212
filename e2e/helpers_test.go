package e2e_test

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	binaryPath     string
	binaryBuildErr error
	binaryOnce     sync.Once
	sharedTempDir  string
)

// TestMain sets up and tears down shared test resources.
func TestMain(m *testing.M) {
	// Create shared temp directory for the binary
	var err error
	sharedTempDir, err = os.MkdirTemp("", "h2server-e2e-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	// Run tests
	code := m.Run()

	// Cleanup shared temp directory
	_ = os.RemoveAll(sharedTempDir)

	os.Exit(code)
}

// ServerConfig holds configuration for starting the h2server binary.
type ServerConfig struct {
	Port   int
	Root   string
	Static string
	Proxy  string
	HTTP2  bool
	// Extra is appended to the generated config file verbatim.
	Extra string
}

// buildBinary compiles the h2server binary once per test run.
// Returns the path to the compiled binary.
func buildBinary(t *testing.T) string {
	t.Helper()

	binaryOnce.Do(func() {
		binaryPath = filepath.Join(sharedTempDir, "h2server")

		cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/h2server")
		cmd.Dir = getProjectRoot(t)
		output, err := cmd.CombinedOutput()
		if err != nil {
			binaryBuildErr = fmt.Errorf("build binary: %w\nOutput: %s", err, output)
			return
		}
	})

	if binaryBuildErr != nil {
		t.Fatalf("failed to build binary: %v", binaryBuildErr)
	}

	return binaryPath
}

// getProjectRoot returns the root directory of the h2server project.
func getProjectRoot(t *testing.T) string {
	t.Helper()

	// Find the go.mod file to determine project root
	dir, err := os.Getwd()
	require.NoError(t, err, "get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// writeTree creates files below a fresh temp directory and returns it.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// createConfigFile creates a temporary config file for the server.
// Returns the path to the config file.
func createConfigFile(t *testing.T, cfg ServerConfig) string {
	t.Helper()

	var sb strings.Builder
	fmt.Fprintf(&sb, `server:
  address: 127.0.0.1
  port: %d
  http2: %t

files:
  root: "%s"
  static: "%s"

proxy: "%s"
`,
		cfg.Port,
		cfg.HTTP2,
		cfg.Root,
		cfg.Static,
		cfg.Proxy,
	)

	sb.WriteString("\nlog:\n  level: error\n")
	sb.WriteString(cfg.Extra)

	configPath := filepath.Join(t.TempDir(), "h2server.yaml")
	err := os.WriteFile(configPath, []byte(sb.String()), 0o600)
	require.NoError(t, err, "write config file")

	return configPath
}

// startServer starts the h2server binary with the given configuration.
// Returns the base URL and a cleanup function that must be called to stop the server.
func startServer(t *testing.T, cfg ServerConfig) (string, func()) {
	t.Helper()

	binary := buildBinary(t)

	// Create config file
	configPath := createConfigFile(t, cfg)

	cmd := exec.Command(binary, "serve", "--config", configPath)

	// Capture output for debugging
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Start()
	require.NoError(t, err, "start server")

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)

	// Wait for server to be ready
	waitForServer(t, baseURL, 10*time.Second)

	cleanup := func() {
		if cmd.Process != nil {
			_ = cmd.Process.Signal(syscall.SIGTERM)
			_ = cmd.Wait()
		}
	}

	return baseURL, cleanup
}

// waitForServer polls the server until it responds or times out.
func waitForServer(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	client := &http.Client{Timeout: 1 * time.Second}

	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/")
		if err == nil {
			_ = resp.Body.Close()
			return // Server is ready
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server failed to start within %v", timeout)
}

// getOpenPort finds an available TCP port.
func getOpenPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err, "find open port")

	addr := l.Addr().(*net.TCPAddr)
	port := addr.Port

	err = l.Close()
	require.NoError(t, err, "close port")

	return port
}
