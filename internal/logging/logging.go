package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a logger tagged with module. The DEV environment gets a coloured console
// writer; everything else logs JSON lines to stderr.
func New(module, env string) zerolog.Logger {
	return NewWithWriter(os.Stderr, module, env)
}

func NewWithWriter(w io.Writer, module, env string) zerolog.Logger {
	var out io.Writer = w
	if strings.EqualFold(env, "DEV") {
		console := zerolog.ConsoleWriter{
			Out:           w,
			TimeFormat:    "15:04:05",
			PartsOrder:    []string{"time", "level", "module", "message"},
			FieldsExclude: []string{"module"},
		}
		console.FormatPartValueByName = func(i any, s string) string {
			if s == "module" && i != nil {
				return strings.ToUpper(fmt.Sprintf("%s", i))
			}
			return ""
		}
		console.FormatFieldName = func(i any) string {
			return fmt.Sprintf("\n         \033[30m- \033[36m%s: \033[0m", i)
		}
		console.FormatErrFieldName = func(i any) string {
			return fmt.Sprintf("\n         \033[30m- \033[31m%s: \033[0m", i)
		}
		out = console
	}

	return zerolog.New(out).
		With().
		Timestamp().
		Str("module", module).
		Logger()
}
