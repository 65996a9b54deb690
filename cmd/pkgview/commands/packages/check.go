// SPDX-License-Identifier: Apache-2.0

package packages

import (
	"context"
	"io"

	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/common"
	"github.com/hashgraph/pkgview/internal/bll"
	"github.com/hashgraph/pkgview/internal/report"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [names...]",
	Short: "Check installed packages for newer versions",
	Long:  "Query the latest version of the named packages, or of every installed package with --all",
	Example: `  pkgview check -m npm typescript eslint
  pkgview check --all --concurrency 8`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := common.FlagOutput.Value(cmd, nil)
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

		return checkPackages(cmd.Context(), b, cmd.OutOrStdout(), flagManager, args, flagAll, flagConcurrency, format)
	},
}

func checkPackages(ctx context.Context, b bll.BLL, w io.Writer, manager string, names []string, all bool,
	concurrency int, format string) error {
	if concurrency < 1 {
		return errorx.IllegalArgument.New("--concurrency must be at least 1, got %d", concurrency).
			WithProperty(errorx.PropertyPayload(), "--concurrency")
	}

	if all == (len(names) > 0) {
		return errorx.IllegalArgument.New("either name the packages to check or pass --all").
			WithProperty(errorx.PropertyPayload(), "package names")
	}

	if !all {
		m, err := common.ParseManager(b, manager)
		if err != nil {
			return err
		}

		pkgs, err := b.CheckLatest(ctx, m, names, concurrency)
		if err != nil {
			return err
		}
		return render(w, format, []packageGroup{{manager: m, pkgs: pkgs}}, true)
	}

	managers, err := common.SelectManagers(b, manager)
	if err != nil {
		return err
	}

	var groups []packageGroup
	for _, m := range managers {
		pkgs, err := b.CheckLatest(ctx, m, nil, concurrency)
		if err != nil {
			if len(managers) == 1 {
				return err
			}
			logx.As().Warn().Err(err).Str("manager", m.String()).Msg("Skipping package manager")
			continue
		}
		groups = append(groups, packageGroup{manager: m, pkgs: pkgs})
	}

	return render(w, format, groups, true)
}
