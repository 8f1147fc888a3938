package validation

import (
	"fmt"
	"os"
	"path/filepath"
)

// MinAuditFreeBytes is the free space below which the audit database check
// warns.
const MinAuditFreeBytes int64 = 64 << 20

// DiskSpaceError indicates too little free space for a file that grows.
type DiskSpaceError struct {
	Path      string
	Required  int64
	Available int64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space at %s: need %s, have %s free",
		e.Path, formatBytes(e.Required), formatBytes(e.Available))
}

// FreeSpace returns the free bytes on the filesystem that holds path. path
// need not exist yet; the nearest existing ancestor is measured.
func FreeSpace(path string) (int64, error) {
	dir, err := existingDir(path)
	if err != nil {
		return 0, err
	}
	free, err := freeBytes(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to get disk space for %s: %w", dir, err)
	}
	return free, nil
}

// CheckDiskSpace returns a *DiskSpaceError when the filesystem holding path
// has less than required bytes free.
func CheckDiskSpace(path string, required int64) error {
	free, err := FreeSpace(path)
	if err != nil {
		return err
	}
	if free < required {
		return &DiskSpaceError{Path: path, Required: required, Available: free}
	}
	return nil
}

// existingDir walks up from path to the first directory that exists.
func existingDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	for {
		info, err := os.Stat(abs)
		if err == nil {
			if info.IsDir() {
				return abs, nil
			}
			return filepath.Dir(abs), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot access path %s: %w", abs, err)
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("no existing directory above %s", path)
		}
		abs = parent
	}
}

// formatBytes renders n with binary units, e.g. "1.5 GB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
