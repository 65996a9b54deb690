// SPDX-License-Identifier: Apache-2.0

package version

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joomcode/errorx"
	"gopkg.in/yaml.v3"
)

type Info struct {
	Number    string `json:"version" yaml:"version" toml:"version"`
	Commit    string `json:"commit" yaml:"commit" toml:"commit"`
	BuildMode string `json:"buildMode" yaml:"buildMode" toml:"buildMode"`
	GoVersion string `json:"go" yaml:"go" toml:"go"`
	Platform  string `json:"platform" yaml:"platform" toml:"platform"`
}

const (
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatText = "text"
)

// Format renders v as yaml, json, toml or a single line of text.
func (v Info) Format(format string) (string, error) {
	var output []byte
	var err error
	switch strings.ToLower(format) {
	case FormatText, "":
		return v.String(), nil
	case FormatJSON:
		output, err = json.Marshal(v)
		if err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "Error marshaling version info to JSON")
		}
	case FormatYAML:
		output, err = yaml.Marshal(v)
		if err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "Error marshaling version info to YAML")
		}
	case FormatTOML:
		var buf bytes.Buffer
		if err = toml.NewEncoder(&buf).Encode(v); err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "Error marshaling version info to TOML")
		}
		output = buf.Bytes()
	default:
		return "", errorx.IllegalFormat.New("unsupported format: %s", format).
			WithProperty(errorx.PropertyPayload(), format)
	}

	return string(output), nil
}

func (v Info) String() string {
	return "pkgview " + v.Number + " (" + v.Commit + ", " + v.BuildMode + ", " + v.GoVersion + " " + v.Platform + ")"
}

var (
	versionInfo Info
)

func init() {
	versionInfo = Info{
		Number:    Number(),
		Commit:    Commit(),
		BuildMode: BuildMode(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func Get() Info {
	return versionInfo
}
