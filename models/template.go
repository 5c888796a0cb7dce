package models

import "strings"

// Placeholder is one inferred variable position in a template.
type Placeholder struct {
	Name         string `yaml:"name" json:"name"`
	InferredType string `yaml:"inferred_type" json:"inferred_type"` // int, url, path, string
	Default      string `yaml:"default" json:"default"`
}

// Template is a generalized artifact synthesized from a cluster of
// concrete examples. Immutable once synthesized; a new run produces new
// Template values rather than editing prior ones.
type Template struct {
	Name         string        `yaml:"name" json:"name"`
	Signature    string        `yaml:"signature" json:"signature"`
	Skeleton     string        `yaml:"skeleton" json:"skeleton"` // contains ${NAME} markers
	Placeholders []Placeholder `yaml:"placeholders" json:"placeholders"`
	ClusterID    int           `yaml:"cluster_id" json:"cluster_id"`
	SourceSpans  []int         `yaml:"source_spans" json:"source_spans"`
	Annotations  []string      `yaml:"annotations,omitempty" json:"annotations,omitempty"`
	Unverified   bool          `yaml:"unverified" json:"unverified"` // single-member verbatim copy
}

// Render substitutes placeholder values into the skeleton. Missing keys
// fall back to the placeholder default.
func (t *Template) Render(values map[string]string) string {
	out := t.Skeleton
	for _, p := range t.Placeholders {
		v, ok := values[p.Name]
		if !ok {
			v = p.Default
		}
		out = strings.ReplaceAll(out, "${"+p.Name+"}", v)
	}
	return out
}

// RenderDefaults renders the skeleton with every placeholder at its
// default value, reproducing one member of the source cluster modulo
// whitespace.
func (t *Template) RenderDefaults() string {
	return t.Render(nil)
}

// FileName is the artifact file name for the template.
func (t *Template) FileName() string {
	if t.Unverified {
		return t.Name + ".unverified.sh"
	}
	return t.Name + ".sh"
}
