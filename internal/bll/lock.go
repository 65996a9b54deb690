// SPDX-License-Identifier: Apache-2.0

package bll

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/automa-saga/logx"
	"github.com/gofrs/flock"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/joomcode/errorx"
)

// DefaultLockWait is how long LockManager waits for another process to release a manager.
const DefaultLockWait = 30 * time.Second

const lockRetryDelay = 250 * time.Millisecond

// LockManager takes an exclusive lock on manager m that is shared by every pkgview process on the host, so two
// upgrades never drive the same package manager at once. The lock file lives in dir, or the system temp directory
// when dir is empty. The returned function releases the lock.
func LockManager(ctx context.Context, dir string, m models.Manager, wait time.Duration) (func(), error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errorx.IllegalState.Wrap(err, "failed to create lock directory %q", dir)
	}

	lockPath := filepath.Join(dir, fmt.Sprintf("pkgview-%s.lock", m))
	fileLock := flock.New(lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return nil, errorx.IllegalState.Wrap(err, "failed to lock %s; is another upgrade running?", m.DisplayName()).
			WithProperty(errorx.PropertyPayload(), lockPath)
	}
	if !locked {
		return nil, errorx.IllegalState.New("timed out waiting for the %s lock", m.DisplayName()).
			WithProperty(errorx.PropertyPayload(), lockPath)
	}

	logx.As().Debug().Str("manager", m.String()).Str("lockPath", lockPath).Msg("Acquired manager lock")

	return func() {
		if e := fileLock.Unlock(); e != nil {
			logx.As().Warn().Err(e).Str("lockPath", lockPath).Msg("Failed to release manager lock")
		}
	}, nil
}
