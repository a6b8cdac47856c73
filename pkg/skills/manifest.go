package skills

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"
	"text/template"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Manifest is a declarative skill read from a SKILL.md file. The frontmatter
// carries the definition; the body is a text/template rendered with the
// call arguments.
type Manifest struct {
	Definition
	Body string
	Path string
	Dir  string
}

const (
	maxNameLen        = 64
	maxDescriptionLen = 1024
)

var namePattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// ManifestFile is the file name LoadDir looks for in each subdirectory.
const ManifestFile = "SKILL.md"

// LoadDir loads root/*/SKILL.md in lexical order of the directory names.
// Subdirectories without a manifest are skipped. The first invalid manifest
// stops the scan.
func LoadDir(root string) ([]Manifest, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}
	paths, err := filepath.Glob(filepath.Join(root, "*", ManifestFile))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	out := make([]Manifest, 0, len(paths))
	for _, path := range paths {
		m, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// LoadFile reads and validates one manifest. The skill name must equal the
// name of the directory holding the file.
func LoadFile(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	m, err := parseManifest(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: %w", path, err)
	}
	m.Path = path
	m.Dir = filepath.Dir(path)
	if dir := filepath.Base(m.Dir); dir != m.Name {
		return Manifest{}, fmt.Errorf("%s: skill %q must match directory name (%s)", path, m.Name, dir)
	}
	return m, nil
}

func parseManifest(data []byte) (Manifest, error) {
	head, body, err := splitFrontmatter(data)
	if err != nil {
		return Manifest{}, err
	}
	var fm frontmatter
	if err := yaml.Unmarshal(head, &fm); err != nil {
		return Manifest{}, fmt.Errorf("parse frontmatter: %w", err)
	}
	params, err := fm.parameterSpecs()
	if err != nil {
		return Manifest{}, err
	}
	def := Definition{
		Name:        strings.TrimSpace(fm.Name),
		Description: strings.TrimSpace(fm.Description),
		Version:     strings.TrimSpace(fm.Version),
		Category:    strings.TrimSpace(fm.Category),
		Tags:        uniqueTags(fm.Tags),
		Parameters:  params,
	}
	if err := checkDefinition(def); err != nil {
		return Manifest{}, err
	}
	return Manifest{Definition: def, Body: string(bytes.TrimSpace(body))}, nil
}

// Skill turns the manifest into a runnable skill rendering its body.
func (m Manifest) Skill() (*FuncSkill, error) {
	tmpl, err := template.New(m.Name).Option("missingkey=error").Parse(m.Body)
	if err != nil {
		return nil, fmt.Errorf("skill %s: parse body: %w", m.Name, err)
	}
	return New(m.Definition, func(_ context.Context, args Args) (any, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, map[string]any(args)); err != nil {
			return nil, fmt.Errorf("render error: %w", err)
		}
		return buf.String(), nil
	})
}

type frontmatter struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Version     string           `yaml:"version"`
	Category    string           `yaml:"category"`
	Tags        []string         `yaml:"tags"`
	Parameters  []parameterEntry `yaml:"parameters"`
}

type parameterEntry struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Required    *bool  `yaml:"required"`
	Default     any    `yaml:"default"`
}

func (f frontmatter) parameterSpecs() ([]ParameterSpec, error) {
	out := make([]ParameterSpec, 0, len(f.Parameters))
	for _, entry := range f.Parameters {
		typ, err := ParseParameterType(entry.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", entry.Name, err)
		}
		required := true
		if entry.Required != nil {
			required = *entry.Required
		}
		out = append(out, ParameterSpec{
			Name:        strings.TrimSpace(entry.Name),
			Type:        typ,
			Description: entry.Description,
			Required:    required,
			Default:     entry.Default,
		})
	}
	return out, nil
}

var fence = []byte("---")

// splitFrontmatter separates the YAML block delimited by "---" lines from
// the body that follows it. Both fences must stand alone on their line.
func splitFrontmatter(data []byte) (head, body []byte, err error) {
	rest, ok := bytes.CutPrefix(bytes.TrimLeft(data, " \t\r\n"), fence)
	if !ok {
		return nil, nil, errors.New("missing frontmatter")
	}
	opening, rest, _ := bytes.Cut(rest, []byte("\n"))
	if len(bytes.TrimSpace(opening)) != 0 {
		return nil, nil, errors.New("missing frontmatter")
	}
	for off := 0; off < len(rest); {
		end, next := len(rest), len(rest)
		if i := bytes.IndexByte(rest[off:], '\n'); i >= 0 {
			end, next = off+i, off+i+1
		}
		if bytes.Equal(bytes.TrimRight(rest[off:end], " \t\r"), fence) {
			return rest[:off], rest[next:], nil
		}
		off = next
	}
	return nil, nil, errors.New("invalid frontmatter: no closing ---")
}

func checkDefinition(def Definition) error {
	switch n := utf8.RuneCountInString(def.Name); {
	case n == 0:
		return errors.New("name is required")
	case n > maxNameLen:
		return fmt.Errorf("name is %d characters, limit %d", n, maxNameLen)
	case !namePattern.MatchString(def.Name):
		return fmt.Errorf("name must match %s: %q", namePattern, def.Name)
	}
	switch n := utf8.RuneCountInString(def.Description); {
	case n == 0:
		return errors.New("description is required")
	case n > maxDescriptionLen:
		return fmt.Errorf("description is %d characters, limit %d", n, maxDescriptionLen)
	}
	return nil
}

// uniqueTags trims tags and drops blanks and repeats, keeping first-seen order.
func uniqueTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
