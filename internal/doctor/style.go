// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"io"

	"github.com/muesli/termenv"
)

// palette holds the escape sequences used by Print. The zero value prints plain text.
type palette struct {
	Red    string
	Yellow string
	Cyan   string
	White  string
	Gray   string
	Reset  string
	Bold   string
}

var ansi = palette{
	Red:    "\033[31m",
	Yellow: "\033[33m",
	Cyan:   "\033[36m",
	White:  "\033[37m",
	Gray:   "\033[90m",
	Reset:  "\033[0m",
	Bold:   "\033[1m",
}

// paletteFor returns colors only when w is a terminal that supports them and NO_COLOR is unset.
func paletteFor(w io.Writer) palette {
	out := termenv.NewOutput(w)
	if out.EnvNoColor() || out.Profile == termenv.Ascii {
		return palette{}
	}
	return ansi
}
