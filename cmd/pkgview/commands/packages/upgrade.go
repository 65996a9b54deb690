// SPDX-License-Identifier: Apache-2.0

package packages

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/automa-saga/automa"
	"github.com/automa-saga/logx"
	"github.com/charmbracelet/huh"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/common"
	"github.com/hashgraph/pkgview/internal/bll"
	"github.com/hashgraph/pkgview/internal/workflows"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade names...",
	Short: "Upgrade installed packages",
	Long:  "Upgrade the named packages of one package manager, one after another",
	Example: `  pkgview upgrade -m npm typescript eslint
  pkgview upgrade -m pip requests --yes --continue-on-error`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// stop-on-error defaults to true, so only an explicit value takes part in the exclusivity check
		stopOnErr := flagStopOnError && cmd.Flags().Changed(common.FlagStopOnError.Name)
		mode, err := common.GetExecutionMode(flagContinueOnError, stopOnErr, flagRollbackOnError)
		if err != nil {
			return err
		}

		b, err := common.NewBLL()
		if err != nil {
			return err
		}

		var confirm confirmFunc
		if !flagYes {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errorx.IllegalArgument.New("cannot ask for confirmation without a terminal, pass --yes to upgrade").
					WithProperty(errorx.PropertyPayload(), "--yes")
			}
			confirm = confirmUpgrade
		}

		report, err := upgradePackages(cmd.Context(), b, cmd.OutOrStdout(), flagManager, args, mode, confirm)
		if err != nil {
			return err
		}
		if report != nil {
			common.CheckWorkflowReport(cmd.Context(), report)
		}
		return nil
	},
}

// confirmFunc asks the user to approve an upgrade described by title.
type confirmFunc func(title string) (bool, error)

func confirmUpgrade(title string) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Upgrade").
		Negative("Cancel").
		Value(&ok).
		Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, errorx.IllegalState.Wrap(err, "failed to read confirmation")
	}
	return ok, nil
}

// upgradePackages runs the upgrade workflow and prints its summary. It returns a nil report when the user declined.
// A nil confirm skips the prompt.
func upgradePackages(ctx context.Context, b bll.BLL, w io.Writer, manager string, names []string, mode automa.TypeMode,
	confirm confirmFunc) (*automa.Report, error) {
	m, err := common.ParseManager(b, manager)
	if err != nil {
		return nil, err
	}

	c, err := b.Load(ctx, m)
	if err != nil {
		return nil, err
	}

	wb, err := workflows.UpgradePackagesWorkflow(c, m, names, mode)
	if err != nil {
		return nil, err
	}

	if confirm != nil {
		title := fmt.Sprintf("Upgrade %s with %s?", strings.Join(names, ", "), m.DisplayName())
		ok, err := confirm(title)
		if err != nil {
			return nil, err
		}
		if !ok {
			logx.As().Info().Str("manager", m.String()).Strs("packages", names).Msg("Upgrade cancelled")
			_, err := fmt.Fprintln(w, "Upgrade cancelled.")
			return nil, err
		}
	}

	unlock, err := bll.LockManager(ctx, "", m, bll.DefaultLockWait)
	if err != nil {
		return nil, err
	}
	defer unlock()

	report := common.ExecuteWorkflow(ctx, wb)
	if err := printSummary(w, workflows.Summarize(report)); err != nil {
		return report, err
	}

	return report, nil
}

func printSummary(w io.Writer, s workflows.UpgradeSummary) error {
	lines := []struct {
		label string
		names []string
	}{
		{"Upgraded", s.Upgraded},
		{"Already up to date", s.Skipped},
		{"Failed", s.Failed},
	}

	for _, l := range lines {
		if len(l.names) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", l.label, strings.Join(l.names, ", ")); err != nil {
			return err
		}
	}
	return nil
}
