// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package form

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/form.html.tmpl"))

// Notice is a transient user-visible message.
type Notice struct {
	Message string
	Error   bool
}

// Page is the data rendered around a form.
type Page struct {
	Title     string
	Action    string
	Form      *Form
	CSRFField string
	CSRFToken string
	Notice    *Notice
}

// Render writes the HTML page for p.
func Render(w io.Writer, p Page) error {
	if p.Form == nil {
		return fmt.Errorf("form: render without form")
	}
	if p.Title == "" {
		p.Title = "Configuration"
	}
	if p.Action == "" {
		p.Action = "/"
	}
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("form: render: %w", err)
	}
	return nil
}
