//go:build !unix

package contract

import (
	"fmt"
	"os"
)

// LockFile creates path but takes no cross-process lock on this platform.
// In-process callers still serialize through their own mutex.
func LockFile(path string) (func() error, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file %s: %w", path, err)
	}
	return f.Close, nil
}
