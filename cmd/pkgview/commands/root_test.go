// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hashgraph/pkgview/internal/version"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_SubcommandOrder(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	require.Equal(t, []string{"managers", "list", "check", "upgrade", "browse", "version"}, names)
}

func TestExecute_Version(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "-o", "yaml"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		flagOutputFormat = "table"
	})

	require.NoError(t, Execute(context.Background()))
	require.True(t, strings.Contains(out.String(), "version: "+version.Number()))
}
