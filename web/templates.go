package web

import (
	"html/template"
	"time"

	"spendwise/internal/money"
)

// TemplateFuncs returns the helper functions available inside templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"cents": money.Format,
		"dateOnly": func(t time.Time) string {
			return t.Format(time.DateOnly)
		},
	}
}

// Templates parses the embedded HTML templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(TemplateFuncs()).ParseFS(TemplatesFS, "templates/*.html")
}
