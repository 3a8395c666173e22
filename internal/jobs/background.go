package jobs

import (
	"os"
	"os/exec"
	"path/filepath"
)

// BackgroundSyncCommand is the hidden CLI command name the spawned process
// invokes
const BackgroundSyncCommand = "_internal_background_sync"

// SpawnBackgroundSync spawns a detached background process to handle sync.
// This allows the main CLI to exit immediately while sync continues.
func SpawnBackgroundSync(args ...string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}

	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return err
	}

	cmd := exec.Command(executable, append([]string{BackgroundSyncCommand}, args...)...)

	// Detach from parent process
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return err
	}

	// Don't wait; the parent process can exit immediately
	return nil
}
