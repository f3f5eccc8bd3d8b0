package main

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"unicode"
	"unicode/utf8"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"initials": func(name string) string {
		var b strings.Builder
		for _, part := range strings.Fields(name) {
			r, _ := utf8.DecodeRuneInString(part)
			b.WriteRune(unicode.ToUpper(r))
		}
		return b.String()
	},
	"seconds": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"add":     func(a, b int) int { return a + b },
	// tel returns a dial link for a phone number from the content file.
	"tel": func(phone string) template.URL {
		return template.URL("tel:" + strings.NewReplacer(" ", "", "-", "").Replace(phone))
	},
}
