// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSortVersions(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "semantic", in: []string{"8.2.0", "8.1.0", "8.10.0"}, want: []string{"8.1.0", "8.2.0", "8.10.0"}},
		{name: "two part", in: []string{"1.21", "1.9"}, want: []string{"1.9", "1.21"}},
		{name: "brew revisions", in: []string{"3.3.1_1", "3.3.1", "3.3.1_10", "3.3.1_2"}, want: []string{"3.3.1", "3.3.1_1", "3.3.1_2", "3.3.1_10"}},
		{name: "mixed", in: []string{"HEAD-abc", "2.0.0"}, want: []string{"2.0.0", "HEAD-abc"}},
		{name: "empty", in: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortVersions(tt.in)
			if len(tt.want) == 0 {
				require.Empty(t, got)
				return
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSortVersions_DoesNotMutateInput(t *testing.T) {
	in := []string{"2.0.0", "1.0.0"}
	_ = SortVersions(in)
	require.Equal(t, []string{"2.0.0", "1.0.0"}, in)
}

func TestLatestVersion(t *testing.T) {
	require.Equal(t, "8.2.0", LatestVersion([]string{"8.1.0", "8.2.0"}))
	require.Equal(t, "1.21.0", LatestVersion([]string{"1.21.0"}))
	require.Equal(t, "", LatestVersion(nil))
}

func TestCompareVersions(t *testing.T) {
	require.Equal(t, 0, CompareVersions("1.0.0", "1.0.0"))
	require.Equal(t, -1, CompareVersions("1.0.9", "1.0.10"))
	require.Equal(t, 1, CompareVersions("010", "9"))
}
