package msgcat

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.en.yaml
var defaultFiles embed.FS

// Catalog holds user-facing notification text as templates, keyed by
// flattened dot-paths. Templates are parsed once at load; missing data
// keys error at render time.
type Catalog struct {
	mu   sync.RWMutex
	tmpl map[string]*template.Template
}

func New() (*Catalog, error) {
	c := &Catalog{tmpl: make(map[string]*template.Template)}
	raw, err := fs.ReadFile(defaultFiles, "messages.en.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded messages: %w", err)
	}
	if err := c.applyYAML(raw); err != nil {
		return nil, err
	}
	return c, nil
}

// Render expands the template at key with data.
func (c *Catalog) Render(key string, data any) (string, error) {
	c.mu.RLock()
	tmpl, ok := c.tmpl[key]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown message key: %s", key)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render message %s: %w", key, err)
	}
	return b.String(), nil
}

func (c *Catalog) applyYAML(raw []byte) error {
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parse messages yaml: %w", err)
	}
	flat := make(map[string]string)
	flatten("", tree, flat)

	parsed := make(map[string]*template.Template, len(flat))
	for k, v := range flat {
		tmpl, err := template.New(k).Option("missingkey=error").Parse(v)
		if err != nil {
			return fmt.Errorf("parse message %s: %w", k, err)
		}
		parsed[k] = tmpl
	}

	c.mu.Lock()
	for k, v := range parsed {
		c.tmpl[k] = v
	}
	c.mu.Unlock()
	return nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprintf("%v", val)
		}
	}
}
