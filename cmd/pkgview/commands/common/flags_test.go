// SPDX-License-Identifier: Apache-2.0

package common

import (
	"testing"

	"github.com/automa-saga/automa"
	"github.com/golang/mock/gomock"
	"github.com/hashgraph/pkgview/internal/bll"
	"github.com/hashgraph/pkgview/internal/config"
	"github.com/hashgraph/pkgview/internal/execx"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newTestBLL(t *testing.T, enabled ...string) bll.BLL {
	t.Helper()
	ctrl := gomock.NewController(t)

	conf := config.Default()
	conf.Managers.Enabled = enabled

	factory := func(m models.Manager, _ execx.Runner, _ pkgsource.Settings) (pkgsource.Repository, error) {
		repo := pkgsource.NewMockRepository(ctrl)
		repo.EXPECT().Manager().Return(m).AnyTimes()
		return repo, nil
	}

	b, err := bll.New(&conf, bll.WithRepositoryFactory(factory), bll.WithRunner(execx.NewMockRunner(ctrl)))
	require.NoError(t, err)
	return b
}

func TestFlagDefinition_Defaults(t *testing.T) {
	var (
		output      string
		all         bool
		concurrency int
		names       []string
	)

	cmd := &cobra.Command{Use: "check"}
	FlagOutput.SetVar(cmd, &output, false)
	FlagAll.SetVar(cmd, &all, false)
	FlagConcurrency.SetVar(cmd, &concurrency, false)
	list := FlagDefinition[[]string]{Name: "names", Default: []string{"eslint"}}
	list.SetVar(cmd, &names, false)

	gotOutput, err := FlagOutput.Value(cmd, nil)
	require.NoError(t, err)
	require.Equal(t, "table", gotOutput)

	gotAll, err := FlagAll.Value(cmd, nil)
	require.NoError(t, err)
	require.False(t, gotAll)

	gotConcurrency, err := FlagConcurrency.Value(cmd, nil)
	require.NoError(t, err)
	require.Equal(t, bll.DefaultCheckConcurrency, gotConcurrency)

	gotNames, err := list.Value(cmd, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"eslint"}, gotNames)
}

func TestFlagDefinition_ParsesArgs(t *testing.T) {
	var (
		manager     string
		concurrency int
		yes         bool
	)

	cmd := &cobra.Command{Use: "upgrade"}
	FlagManager.SetVar(cmd, &manager, false)
	FlagConcurrency.SetVar(cmd, &concurrency, false)
	FlagYes.SetVar(cmd, &yes, false)

	got, err := FlagManager.Value(cmd, []string{"-m", "pip", "--concurrency", "8", "-y"})
	require.NoError(t, err)
	require.Equal(t, "pip", got)
	require.Equal(t, "pip", manager)
	require.Equal(t, 8, concurrency)
	require.True(t, yes)
}

func TestFlagDefinition_PersistentFromParent(t *testing.T) {
	var output string
	root := &cobra.Command{Use: "pkgview"}
	FlagOutput.SetVarP(root, &output, false)

	child := &cobra.Command{Use: "list", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)

	require.NoError(t, root.PersistentFlags().Set(FlagOutput.Name, "json"))
	got, err := FlagOutput.Value(child, nil)
	require.NoError(t, err)
	require.Equal(t, "json", got)
}

func TestFlagDefinition_RegisterErrors(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}

	err := FlagSearch.register(cmd, cmd.Flags(), nil, false, false)
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))

	var s string
	err = FlagSearch.register(nil, cmd.Flags(), &s, false, false)
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))

	var f float64
	unsupported := FlagDefinition[float64]{Name: "ratio"}
	err = unsupported.register(cmd, cmd.Flags(), &f, false, false)
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))
}

func TestFlagDefinition_Required(t *testing.T) {
	var manager string
	cmd := &cobra.Command{Use: "upgrade"}
	FlagManager.SetVar(cmd, &manager, true)

	f := cmd.Flags().Lookup(FlagManager.Name)
	require.NotNil(t, f)
	require.Equal(t, []string{"true"}, f.Annotations[cobra.BashCompOneRequiredFlag])
}

func TestGetExecutionMode(t *testing.T) {
	cases := []struct {
		name                                    string
		continueOnErr, stopOnErr, rollbackOnErr bool
		want                                    automa.TypeMode
	}{
		{name: "default", want: automa.StopOnError},
		{name: "stop", stopOnErr: true, want: automa.StopOnError},
		{name: "continue", continueOnErr: true, want: automa.ContinueOnError},
		{name: "rollback", rollbackOnErr: true, want: automa.RollbackOnError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GetExecutionMode(tc.continueOnErr, tc.stopOnErr, tc.rollbackOnErr)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := GetExecutionMode(true, true, false)
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))
}

func TestParseManager(t *testing.T) {
	b := newTestBLL(t, "npm", "pip")

	m, err := ParseManager(b, "PIP")
	require.NoError(t, err)
	require.Equal(t, models.ManagerPip, m)

	_, err = ParseManager(b, "")
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))

	_, err = ParseManager(b, "brew")
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument), "homebrew is not enabled")

	_, err = ParseManager(b, "cargo")
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))

	single := newTestBLL(t, "npm")
	m, err = ParseManager(single, "")
	require.NoError(t, err)
	require.Equal(t, models.ManagerNpm, m)
}

func TestSelectManagers(t *testing.T) {
	b := newTestBLL(t, "npm", "pip")

	all, err := SelectManagers(b, "")
	require.NoError(t, err)
	require.Equal(t, []models.Manager{models.ManagerNpm, models.ManagerPip}, all)

	one, err := SelectManagers(b, "npm")
	require.NoError(t, err)
	require.Equal(t, []models.Manager{models.ManagerNpm}, one)
}
