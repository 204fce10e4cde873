package handlers

import (
	"html/template"
	"strings"

	"certview/internal/view"
)

func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"classes": func(cell view.Cell) string {
			return strings.Join(cell.Classes, " ")
		},
		"plural": func(n int, singular, plural string) string {
			if n == 1 {
				return singular
			}
			return plural
		},
	}
}
