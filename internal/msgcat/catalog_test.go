package msgcat

import (
	"strings"
	"testing"
	"text/template"
)

func TestRenderKnownKeys(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := c.Render("game.joined", map[string]any{"Username": "Bob"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "Bob") {
		t.Fatalf("rendered text missing username: %q", got)
	}

	got, err = c.Render("game.completed", map[string]any{"Rating": 1216})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "1216") {
		t.Fatalf("rendered text missing rating: %q", got)
	}
}

func TestBadTemplateFailsAtLoad(t *testing.T) {
	c := &Catalog{tmpl: map[string]*template.Template{}}
	err := c.applyYAML([]byte("broken: \"{{.Oops\"\n"))
	if err == nil {
		t.Fatalf("template parse errors must surface at load, not at render")
	}
	if _, ok := c.tmpl["broken"]; ok {
		t.Fatalf("broken template must not be cached")
	}
}

func TestRenderUnknownKey(t *testing.T) {
	c, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("no.such.key", nil); err == nil {
		t.Fatalf("expected error for unknown key")
	}
}
