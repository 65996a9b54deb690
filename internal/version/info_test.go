// SPDX-License-Identifier: Apache-2.0

package version

import (
	"encoding/json"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testInfo() Info {
	return Info{Number: "1.2.3", Commit: "abc123", BuildMode: "dev", GoVersion: "go1.25.2", Platform: "linux/amd64"}
}

func TestInfo_Format(t *testing.T) {
	info := testInfo()

	out, err := info.Format("JSON")
	require.NoError(t, err)
	var fromJSON Info
	require.NoError(t, json.Unmarshal([]byte(out), &fromJSON))
	require.Equal(t, info, fromJSON)

	out, err = info.Format(FormatYAML)
	require.NoError(t, err)
	require.Contains(t, out, "version: 1.2.3")
	var fromYAML Info
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	require.Equal(t, info, fromYAML)

	out, err = info.Format(FormatTOML)
	require.NoError(t, err)
	require.Contains(t, out, `commit = "abc123"`)
	var fromTOML Info
	_, err = toml.Decode(out, &fromTOML)
	require.NoError(t, err)
	require.Equal(t, info, fromTOML)

	out, err = info.Format("")
	require.NoError(t, err)
	require.Equal(t, "pkgview 1.2.3 (abc123, dev, go1.25.2 linux/amd64)", out)
}

func TestInfo_Format_Unsupported(t *testing.T) {
	_, err := testInfo().Format("xml")
	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, errorx.IllegalFormat))
}

func TestGet(t *testing.T) {
	info := Get()
	require.Equal(t, Number(), info.Number)
	require.Equal(t, Commit(), info.Commit)
	require.NotEmpty(t, info.GoVersion)
	require.Contains(t, info.Platform, "/")
}
