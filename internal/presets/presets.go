// Package presets embeds sample programs.
package presets

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed programs/*.b
var programs embed.FS

// Names returns the preset names in alphabetical order.
func Names() []string {
	entries, err := programs.ReadDir("programs")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".b"))
	}
	sort.Strings(names)
	return names
}

// Get returns the source of a preset.
func Get(name string) (string, error) {
	data, err := programs.ReadFile(path.Join("programs", name+".b"))
	if err != nil {
		return "", fmt.Errorf("unknown preset %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return string(data), nil
}
