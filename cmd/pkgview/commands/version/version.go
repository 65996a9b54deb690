// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"

	"github.com/hashgraph/pkgview/cmd/pkgview/commands/common"
	"github.com/hashgraph/pkgview/internal/doctor"
	"github.com/hashgraph/pkgview/internal/report"
	"github.com/hashgraph/pkgview/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Long:  "Show the current version of the application",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := common.FlagOutput.Value(cmd, args)
		if err != nil {
			return err
		}
		PrintVersion(cmd, format)
		return nil
	},
}

func GetCmd() *cobra.Command {
	return versionCmd
}

// PrintVersion prints the version information. The table format prints a single line.
func PrintVersion(cmd *cobra.Command, format string) {
	output, err := Render(format)
	if err != nil {
		doctor.CheckErr(cmd.Context(), err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
}

func Render(format string) (string, error) {
	if format == report.FormatTable {
		format = version.FormatText
	}
	return version.Get().Format(format)
}
