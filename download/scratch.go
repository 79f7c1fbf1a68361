package download

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const scratchPrefix = "job-"

// NewScratchDir creates the working directory a single download job
// exclusively owns. The caller must remove it with Cleanup on every exit
// path.
func NewScratchDir(tempDir string) (string, error) {
	dir := filepath.Join(tempDir, scratchPrefix+uuid.New().String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating scratch directory")
	}
	return dir, nil
}

// Cleanup removes a job's scratch directory and everything under it. Removal
// failures are logged and swallowed; they never reach the user. Calling it
// again after a successful removal is a no-op.
func Cleanup(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil {
		logrus.WithError(err).WithField("dir", dir).Error("Failed to remove scratch directory")
	}
}

// StartJanitor periodically sweeps tempDir for scratch directories older than
// maxAge. The per-job cleanup covers normal exits; the janitor covers
// directories orphaned by a crash.
func StartJanitor(ctx context.Context, tempDir string, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepScratchDirs(tempDir, maxAge)
			}
		}
	}()
}

func sweepScratchDirs(tempDir string, maxAge time.Duration) {
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		logrus.WithError(err).WithField("dir", tempDir).Error("Janitor failed to read temp directory")
		return
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), scratchPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		stale := filepath.Join(tempDir, entry.Name())
		logrus.WithField("dir", stale).Info("Janitor removing stale scratch directory")
		Cleanup(stale)
	}
}
