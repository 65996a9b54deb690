// SPDX-License-Identifier: Apache-2.0

package bll

import (
	"context"
	"testing"
	"time"

	"github.com/hashgraph/pkgview/internal/models"
	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/require"
)

func TestLockManager_Exclusive(t *testing.T) {
	dir := t.TempDir()

	unlock, err := LockManager(context.Background(), dir, models.ManagerNpm, time.Second)
	require.NoError(t, err)

	_, err = LockManager(context.Background(), dir, models.ManagerNpm, 300*time.Millisecond)
	require.True(t, errorx.IsOfType(err, errorx.IllegalState))

	// other managers are independent
	unlockPip, err := LockManager(context.Background(), dir, models.ManagerPip, time.Second)
	require.NoError(t, err)
	unlockPip()

	unlock()
	unlock, err = LockManager(context.Background(), dir, models.ManagerNpm, time.Second)
	require.NoError(t, err)
	unlock()
}
