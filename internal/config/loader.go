package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
	SourceFlag    SourceKind = "flag"
)

// Source says where an effective value came from.
type Source struct {
	Kind   SourceKind
	Name   string // flag name, or what a default was derived from
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // dotted option path -> source of the winning value
	Files   []string          // config files read, includes before their includer
}

// DefaultConfigPath is ~/.config/stackwm/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "stackwm", "config.yaml"), nil
}

// LoadFromPath is Load without command-line overrides.
func LoadFromPath(path string) (*LoadResult, error) {
	return Load(path, nil)
}

// Load builds the effective config from three layers, lowest first: the
// defaults, the file at path with its includes, and the flags the user set.
// A missing file contributes nothing.
func Load(path string, overrides *Overrides) (*LoadResult, error) {
	effective := layer{sources: map[string]Source{}}
	ld := &loader{done: map[string]bool{}}

	file, err := ld.loadIfPresent(path)
	if err != nil {
		return nil, err
	}
	effective.cover(file)
	effective.cover(overrides.layer())

	cfg := BuildEffectiveConfig(effective.raw)
	if err := cfg.Validate(); err != nil {
		return nil, effective.locate(err)
	}
	return &LoadResult{Config: cfg, Sources: effective.sources, Files: ld.files}, nil
}

// layer is one contributor to the effective config together with where each
// of its values was written.
type layer struct {
	raw     RawConfig
	sources map[string]Source
}

// cover puts top over l: set fields in top win.
func (l *layer) cover(top layer) {
	l.raw = l.raw.merge(top.raw)
	for path, src := range top.sources {
		l.sources[path] = src
	}
}

// locate points a validation error at the file position or flag that set
// the offending option.
func (l *layer) locate(err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := l.sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}

// loader reads a config file and, depth first, everything it includes.
// An included file is merged under the file that includes it.
type loader struct {
	active []string // files being read, outermost first
	done   map[string]bool
	files  []string
}

func (ld *loader) loadIfPresent(path string) (layer, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return layer{}, nil
	} else if err != nil {
		return layer{}, err
	}
	return ld.load(path)
}

func (ld *loader) load(path string) (layer, error) {
	file := resolveFile(path)
	for _, open := range ld.active {
		if open == file {
			return layer{}, fmt.Errorf("include cycle: %s -> %s", strings.Join(ld.active, " -> "), file)
		}
	}
	if ld.done[file] {
		// Reached again through another include; its values are already in.
		return layer{}, nil
	}
	ld.done[file] = true

	own, err := readLayer(file)
	if err != nil {
		return layer{}, err
	}

	ld.active = append(ld.active, file)
	defer func() { ld.active = ld.active[:len(ld.active)-1] }()

	under := layer{sources: map[string]Source{}}
	for i, include := range own.raw.Include {
		at := own.includeSource(i)
		targets, err := includeTargets(file, include)
		if err != nil {
			return layer{}, fmt.Errorf("%s:%d:%d: include %q: %w", at.File, at.Line, at.Column, include, err)
		}
		for _, target := range targets {
			inc, err := ld.load(target)
			if err != nil {
				return layer{}, err
			}
			under.cover(inc)
		}
	}
	under.cover(own)

	ld.files = append(ld.files, file)
	return under, nil
}

// includeSource returns the position of the i-th include entry, which is
// either a list item or the single scalar value.
func (l layer) includeSource(i int) Source {
	if src, ok := l.sources["include."+strconv.Itoa(i)]; ok {
		return src
	}
	return l.sources["include"]
}

// readLayer strictly decodes one file and records the position of every
// value in it.
func readLayer(file string) (layer, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return layer{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}

	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return layer{}, fmt.Errorf("%s: %w", file, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return layer{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	sources := map[string]Source{}
	if len(doc.Content) > 0 {
		recordPositions(doc.Content[0], file, "", sources)
	}
	return layer{raw: raw, sources: sources}, nil
}

// recordPositions maps every dotted option path under node to the position
// of its value. List items are recorded as path.N.
func recordPositions(node *yaml.Node, file, prefix string, out map[string]Source) {
	at := func(n *yaml.Node) Source {
		return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
	}
	join := func(key string) string {
		if prefix == "" {
			return key
		}
		return prefix + "." + key
	}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			path := join(node.Content[i].Value)
			out[path] = at(node.Content[i+1])
			recordPositions(node.Content[i+1], file, path, out)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			out[join(strconv.Itoa(i))] = at(item)
		}
	}
}

// resolveFile returns the absolute, symlink-free form of path. Unresolvable
// links keep the absolute path so the read reports the real error.
func resolveFile(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// includeTargets resolves an include entry against the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func includeTargets(from, include string) ([]string, error) {
	switch {
	case include == "":
		return nil, fmt.Errorf("path is empty")
	case strings.HasPrefix(include, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		include = filepath.Join(home, include[2:])
	case !filepath.IsAbs(include):
		include = filepath.Join(filepath.Dir(from), include)
	}

	info, err := os.Stat(include)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{include}, nil
	}

	var targets []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(include, pattern))
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
				targets = append(targets, m)
			}
		}
	}
	sort.Strings(targets)
	return targets, nil
}
