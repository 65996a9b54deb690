// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"

	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/browse"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/common"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/managers"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/packages"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/version"
	"github.com/hashgraph/pkgview/internal/config"
	"github.com/hashgraph/pkgview/internal/doctor"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
)

// examples:
// ./pkgview managers
// ./pkgview list -m npm --search type
// ./pkgview check --all -o json
// ./pkgview upgrade -m pip requests --yes
// ./pkgview browse --config ./pkgview.yaml

var (
	flagConfig       string
	flagVersion      bool
	flagOutputFormat string

	rootCmd = &cobra.Command{
		Use:   "pkgview",
		Short: "Inspect and upgrade packages installed by npm, Homebrew, pip and APT",
		Long:  "pkgview - Inspect and upgrade the packages installed by the package managers on this system",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagVersion {
				version.PrintVersion(cmd, flagOutputFormat)
				return nil
			}

			return common.DefaultRunE(cmd, args)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file path")

	// support '--version', '-v' to show version information
	rootCmd.PersistentFlags().BoolVarP(&flagVersion, "version", "v", false, "Show version")
	common.FlagOutput.SetVarP(rootCmd, &flagOutputFormat, false)

	// disable command sorting to keep the order of commands as added
	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(managers.GetCmd())
	rootCmd.AddCommand(packages.GetCmds()...)
	rootCmd.AddCommand(browse.GetCmd())
	rootCmd.AddCommand(version.GetCmd())
}

// Execute executes the root command.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errorx.IllegalArgument.New("context is required")
	}

	cobra.OnInitialize(func() {
		initConfig(ctx)
	})

	_, err := rootCmd.ExecuteContextC(ctx)
	if err != nil {
		return errorx.IllegalState.Wrap(err, "failed to execute command")
	}

	return nil
}

func initConfig(ctx context.Context) {
	err := config.Initialize(flagConfig)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}

	err = logx.Initialize(config.Get().Log)
	if err != nil {
		doctor.CheckErr(ctx, err)
	}
}
