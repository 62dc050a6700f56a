// Package lang is the static execution catalog: which languages can
// run, how they are launched, and how a request's language is inferred.
package lang

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"code-lab/errors"
)

type Mode string

const (
	Interpret      Mode = "interpret"
	CompileThenRun Mode = "compile-then-run"
)

// DefaultID is the fallback when a request carries no usable language
// identifier and no recognizable filename. A heuristic, not an error.
const DefaultID = "python"

// Spec describes how one language executes. Compile and Run are argv
// templates; placeholders are expanded per request:
//
//	{src}   absolute path of the materialized source file
//	{bin}   absolute path of the compiled artifact
//	{dir}   private working directory of the request
//	{class} detected Java entry-point class
type Spec struct {
	ID          string
	DisplayName string
	Mode        Mode
	Extensions  []string
	Compile     []string
	Run         []string
	Timeout     time.Duration
}

var catalog = map[string]Spec{
	"python": {
		ID:          "python",
		DisplayName: "Python 3",
		Mode:        Interpret,
		Extensions:  []string{".py"},
		Run:         []string{"python3", "{src}"},
		Timeout:     10 * time.Second,
	},
	"javascript": {
		ID:          "javascript",
		DisplayName: "JavaScript (Node.js)",
		Mode:        Interpret,
		Extensions:  []string{".js", ".mjs"},
		Run:         []string{"node", "{src}"},
		Timeout:     10 * time.Second,
	},
	"go": {
		ID:          "go",
		DisplayName: "Go",
		Mode:        Interpret,
		Extensions:  []string{".go"},
		Run:         []string{"go", "run", "{src}"},
		Timeout:     15 * time.Second,
	},
	"java": {
		ID:          "java",
		DisplayName: "Java",
		Mode:        CompileThenRun,
		Extensions:  []string{".java"},
		Compile:     []string{"javac", "{src}"},
		Run:         []string{"java", "-cp", "{dir}", "{class}"},
		Timeout:     15 * time.Second,
	},
	"c": {
		ID:          "c",
		DisplayName: "C (gcc)",
		Mode:        CompileThenRun,
		Extensions:  []string{".c"},
		Compile:     []string{"gcc", "{src}", "-o", "{bin}"},
		Run:         []string{"{bin}"},
		Timeout:     15 * time.Second,
	},
	"cpp": {
		ID:          "cpp",
		DisplayName: "C++ (g++)",
		Mode:        CompileThenRun,
		Extensions:  []string{".cpp", ".cc", ".cxx"},
		Compile:     []string{"g++", "{src}", "-o", "{bin}"},
		Run:         []string{"{bin}"},
		Timeout:     15 * time.Second,
	},
}

func Lookup(id string) (Spec, bool) {
	spec, ok := catalog[strings.ToLower(strings.TrimSpace(id))]
	return spec, ok
}

// FromFilename maps a filename to a spec through its extension.
func FromFilename(name string) (Spec, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	dot := strings.LastIndex(name, ".")
	if dot < 0 {
		return Spec{}, false
	}
	ext := name[dot:]
	for _, spec := range catalog {
		for _, e := range spec.Extensions {
			if e == ext {
				return spec, true
			}
		}
	}
	return Spec{}, false
}

// Resolve picks the spec for one request. The filename wins whenever it
// maps to a known language, even against an explicit identifier. An
// explicit identifier that is unknown (and not rescued by the filename)
// is reported as unsupported, never launched. A request with neither a
// usable identifier nor a recognizable filename falls back to DefaultID.
func Resolve(id, filename string) (Spec, error) {
	if spec, ok := FromFilename(filename); ok {
		return spec, nil
	}
	if strings.TrimSpace(id) == "" {
		spec, _ := Lookup(DefaultID)
		return spec, nil
	}
	spec, ok := Lookup(id)
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", errors.ErrUnsupportedLanguage, id)
	}
	return spec, nil
}

// All returns the catalog ordered by identifier, for API listings.
func All() []Spec {
	specs := make([]Spec, 0, len(catalog))
	for _, spec := range catalog {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}

// Expand substitutes placeholders in an argv template.
func Expand(template []string, vars map[string]string) []string {
	argv := make([]string, len(template))
	for i, arg := range template {
		for key, value := range vars {
			arg = strings.ReplaceAll(arg, key, value)
		}
		argv[i] = arg
	}
	return argv
}
