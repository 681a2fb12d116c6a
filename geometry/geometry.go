// Package geometry holds named presets for image size, so CLI tools can
// take a friendly slug like "small" instead of raw block and inode
// counts.
//
// Grounded on disks/disks.go's DiskGeometry: a CSV of named presets
// loaded once at init time via gocsv.UnmarshalToCallback, keyed by slug.
package geometry

import (
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Preset names one predefined image geometry.
type Preset struct {
	Slug        string `csv:"slug"`
	Name        string `csv:"name"`
	TotalBlocks uint32 `csv:"total_blocks"`
	NumInodes   uint32 `csv:"num_inodes"`
	Notes       string `csv:"notes"`
}

//go:embed presets.csv
var rawPresetsCSV string

var presets = map[string]Preset{}

func init() {
	reader := strings.NewReader(rawPresetsCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row Preset) error {
		if _, exists := presets[row.Slug]; exists {
			return fmt.Errorf("duplicate preset slug %q", row.Slug)
		}
		presets[row.Slug] = row
		return nil
	})
	if err != nil && err != io.EOF {
		panic(err)
	}
}

// Lookup returns the preset registered under `slug`.
func Lookup(slug string) (Preset, error) {
	preset, ok := presets[slug]
	if !ok {
		return Preset{}, fmt.Errorf("no predefined image geometry named %q", slug)
	}
	return preset, nil
}

// Names returns every registered preset slug.
func Names() []string {
	names := make([]string, 0, len(presets))
	for slug := range presets {
		names = append(names, slug)
	}
	return names
}
