//go:build basic || database

package integration

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	// sharedBinaryPath holds the path to a shared signalvane binary built once for all tests.
	sharedBinaryPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getBinary returns the path to the signalvane binary, building it once if needed.
func getBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "signalvane-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		binPath := filepath.Join(tempDir, "signalvane")
		buildCmd := exec.Command("go", "build", "-o", binPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build signalvane: %v", err))
		}

		sharedBinaryPath = binPath
	})

	return sharedBinaryPath
}

// runCommand runs the signalvane binary from the project root and returns its stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getBinary(), args...)
	cmd.Dir = "../" // Run from project root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), stdout.String(), stderr.String())
		return stdout.String(), err
	}
	return stdout.String(), nil
}

// writeHistoryFixture writes a three snapshot history log into a fresh data directory.
func writeHistoryFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	history := `{
  "snapshots": [
    {"timestamp": "2026-03-01T10:00:00Z", "entities": [{"name": "AI Agents", "score": 5}, {"name": "Restaking", "score": 7}], "metrics": {}},
    {"timestamp": "2026-03-01T11:00:00Z", "entities": [{"name": "AI Agents", "score": 6}, {"name": "Restaking", "score": 7}], "metrics": {}},
    {"timestamp": "2026-03-01T12:00:00Z", "entities": [{"name": "AI Agents", "score": 8}, {"name": "Restaking", "score": 5}, {"name": "ZK Proofs", "score": 6}], "metrics": {}}
  ]
}
`
	if err := os.WriteFile(filepath.Join(dir, "history.json"), []byte(history), 0o644); err != nil {
		t.Fatalf("failed to write history fixture: %v", err)
	}
	return dir
}
