// Package dotdir resolves the .grounded/ directory that holds the engine's
// configuration file and the default sqlite-vec database location.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const dirName = ".grounded"

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path of the .grounded/ directory to use,
// creating it if needed. Precedence: the override when non-empty, then an
// existing ./.grounded/ in the working directory, then ~/.grounded/.
func (m *Manager) Target(overrideDir string) (string, error) {
	dir := overrideDir

	if dir == "" {
		if cwd, ok := m.localDir(); ok {
			dir = cwd
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("getting home directory: %w", err)
			}
			dir = filepath.Join(home, dirName)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating grounded directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// localDir reports the ./.grounded/ path in the working directory and
// whether it already exists as a directory.
func (m *Manager) localDir() (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}

	local := filepath.Join(cwd, dirName)
	info, err := os.Stat(local)
	return local, err == nil && info.IsDir()
}
