// SPDX-License-Identifier: Apache-2.0

package managers

import (
	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/common"
	"github.com/hashgraph/pkgview/internal/report"
	"github.com/spf13/cobra"
)

var managersCmd = &cobra.Command{
	Use:   "managers",
	Short: "Show which package managers are available",
	Long:  "Probe every enabled package manager and report whether it can be used on this system",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := common.FlagOutput.Value(cmd, args)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(output)
		if err != nil {
			return err
		}

		b, err := common.NewBLL()
		if err != nil {
			return err
		}

		statuses := b.Availability(cmd.Context())
		logx.As().Debug().Int("managers", len(statuses)).Msg("Probed package managers")

		return report.Managers(cmd.OutOrStdout(), format, statuses)
	},
}

func GetCmd() *cobra.Command {
	return managersCmd
}
