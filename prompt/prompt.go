// Package prompt provides validated text templates over named input variables.
//
// Templates use Go's text/template syntax, referencing variables as
// {{.name}}. The set of input variables is declared at construction and
// validated eagerly: a template referencing an undeclared variable fails in
// New, not at render time. Templates are immutable after construction and
// safe for concurrent rendering.
//
// Templates can also be loaded from YAML files carrying the template text and
// its declared input variables (see LoadTemplate).
package prompt

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Template is an immutable prompt template with declared input variables.
type Template struct {
	text           string
	inputVariables []string
	tmpl           *template.Template
}

// New parses the template text and validates it against the declared input
// variables. A reference to an undeclared variable or malformed template
// syntax is reported here rather than at render time.
func New(text string, inputVariables ...string) (*Template, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	// Probe render with empty values to surface undeclared references eagerly.
	probe := make(map[string]string, len(inputVariables))
	for _, v := range inputVariables {
		probe[v] = ""
	}

	if err := tmpl.Execute(&bytes.Buffer{}, probe); err != nil {
		return nil, fmt.Errorf("validate template: %w", err)
	}

	vars := make([]string, len(inputVariables))
	copy(vars, inputVariables)
	sort.Strings(vars)

	return &Template{text: text, inputVariables: vars, tmpl: tmpl}, nil
}

// MustNew is like New but panics on error. Intended for package-level
// template constants.
func MustNew(text string, inputVariables ...string) *Template {
	t, err := New(text, inputVariables...)
	if err != nil {
		panic(err)
	}
	return t
}

// Text returns the raw template text.
func (t *Template) Text() string { return t.text }

// InputVariables returns the declared input variable names, sorted.
func (t *Template) InputVariables() []string {
	out := make([]string, len(t.inputVariables))
	copy(out, t.inputVariables)
	return out
}

// Render substitutes the given values into the template. Every declared input
// variable must be present in values.
func (t *Template) Render(values map[string]string) (string, error) {
	for _, v := range t.inputVariables {
		if _, ok := values[v]; !ok {
			return "", fmt.Errorf("render template: missing value for input variable %q", v)
		}
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}

	return buf.String(), nil
}

// file is the on-disk YAML shape of a serialized template.
type file struct {
	Template       string   `yaml:"template"`
	InputVariables []string `yaml:"input_variables"`
}

// ParseYAML constructs a Template from serialized YAML bytes.
func ParseYAML(data []byte) (*Template, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal template: %w", err)
	}

	if f.Template == "" {
		return nil, fmt.Errorf("unmarshal template: missing template text")
	}

	return New(f.Template, f.InputVariables...)
}

// LoadTemplate reads a YAML template definition from path.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}

	return ParseYAML(data)
}
