package server

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
)

//go:embed templates/*.html
var templateFiles embed.FS

// pageTemplate is the shell every allowed page renders through.
var pageTemplate = MustParseTemplate("page.html")

var templateFuncs = template.FuncMap{
	"label": routeLabel,
}

// routeLabel turns a route name such as "regression-simple" into "Regression simple".
func routeLabel(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "-", " "))
	if len(words) == 0 {
		return ""
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

// ParseTemplate parses a template from the embedded templates folder.
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(templateFiles, "templates/"+name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(templateFuncs).Parse(string(content))
}

// MustParseTemplate is ParseTemplate for templates compiled into the binary, where a
// failure is a build defect.
func MustParseTemplate(name string) *template.Template {
	return template.Must(ParseTemplate(name))
}
