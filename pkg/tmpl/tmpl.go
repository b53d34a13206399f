// Package tmpl renders HTML pages from a set of templates parsed from an fs.FS.
package tmpl

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

// Config describes where templates live and which extra functions they may call.
type Config struct {
	// FS holds the template files.
	FS fs.FS
	// Patterns are glob patterns passed to ParseFS. Defaults to "*.html".
	Patterns []string
	// Funcs are merged over the built-in function map.
	Funcs template.FuncMap
}

// Renderer executes named templates. It is safe for concurrent use.
type Renderer struct {
	root *template.Template
}

var builtins = template.FuncMap{
	"join":  strings.Join,
	"lower": strings.ToLower,
}

// New parses every template matched by cfg.Patterns. Templates are parsed
// with missingkey=error so a typo in a field name fails loudly.
func New(cfg Config) (*Renderer, error) {
	if cfg.FS == nil {
		return nil, errors.New("tmpl: nil FS")
	}

	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = []string{"*.html"}
	}

	funcs := template.FuncMap{}
	for k, v := range builtins {
		funcs[k] = v
	}
	for k, v := range cfg.Funcs {
		funcs[k] = v
	}

	root, err := template.New("").Funcs(funcs).Option("missingkey=error").ParseFS(cfg.FS, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Renderer{root: root}, nil
}

// Render executes the named template with data and writes the result to w.
// Output is buffered so a failing template never produces a partial page.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	t := r.root.Lookup(name)
	if t == nil {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute template %q: %w", name, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// Has reports whether a template with the given name was parsed.
func (r *Renderer) Has(name string) bool {
	return r.root.Lookup(name) != nil
}
