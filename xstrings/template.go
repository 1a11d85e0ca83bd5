// Package xstrings carries the text-rendering and tokenization helpers
// shared by prompt construction (C8, C11) and keyword extraction (C11).
package xstrings

import (
	"strings"
	"text/template"
)

// RenderTemplate parses content as a text/template body and executes it
// against attrs, returning the rendered string. Used to interpolate
// {{.Text}}, {{.EntityTypes}}, {{.MaxLength}} (etc.) into prompt
// templates loaded from config or built-in defaults.
func RenderTemplate(content string, attrs any) (string, error) {
	tpl, err := template.New("prompt").Parse(content)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := tpl.Execute(&sb, attrs); err != nil {
		return "", err
	}
	return sb.String(), nil
}
