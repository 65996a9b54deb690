// SPDX-License-Identifier: Apache-2.0

// Package packages holds the commands that read or change installed packages: list, check and upgrade.
package packages

import (
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/common"
	"github.com/spf13/cobra"
)

var (
	flagManager         string
	flagSearch          string
	flagAll             bool
	flagConcurrency     int
	flagYes             bool
	flagStopOnError     bool
	flagContinueOnError bool
	flagRollbackOnError bool
)

func init() {
	for _, cmd := range []*cobra.Command{listCmd, checkCmd} {
		common.FlagManager.SetVar(cmd, &flagManager, false)
	}
	common.FlagManager.SetVar(upgradeCmd, &flagManager, true)

	common.FlagSearch.SetVar(listCmd, &flagSearch, false)

	common.FlagAll.SetVar(checkCmd, &flagAll, false)
	common.FlagConcurrency.SetVar(checkCmd, &flagConcurrency, false)

	common.FlagYes.SetVar(upgradeCmd, &flagYes, false)
	common.FlagStopOnError.SetVar(upgradeCmd, &flagStopOnError, false)
	common.FlagContinueOnError.SetVar(upgradeCmd, &flagContinueOnError, false)
	common.FlagRollbackOnError.SetVar(upgradeCmd, &flagRollbackOnError, false)
	upgradeCmd.MarkFlagsMutuallyExclusive(common.FlagContinueOnError.Name, common.FlagRollbackOnError.Name)
}

// GetCmds returns the package commands in the order they are shown in help.
func GetCmds() []*cobra.Command {
	return []*cobra.Command{listCmd, checkCmd, upgradeCmd}
}
