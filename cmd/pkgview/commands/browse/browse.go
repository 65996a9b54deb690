// SPDX-License-Identifier: Apache-2.0

package browse

import (
	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/common"
	"github.com/hashgraph/pkgview/internal/tui"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse installed packages interactively",
	Long:  "Open a terminal UI with one tab per enabled package manager to search, check and update packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := common.NewBLL()
		if err != nil {
			return err
		}

		logx.As().Debug().Int("managers", len(b.Managers())).Msg("Starting package browser")
		if err := tui.Run(cmd.Context(), b.Catalogs()); err != nil {
			return errorx.IllegalState.Wrap(err, "package browser stopped unexpectedly")
		}
		return nil
	},
}

func GetCmd() *cobra.Command {
	return browseCmd
}
