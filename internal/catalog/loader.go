// Package catalog loads the campsite catalog from disk.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/roamroute/server/internal/poi"
)

// catalogFile is the on-disk envelope
type catalogFile struct {
	Version string         `json:"version,omitempty"`
	Sites   []poi.Campsite `json:"sites"`
}

// Load reads and validates a campsite catalog from path
func Load(path string) ([]poi.Campsite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	sites, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return sites, nil
}

// Parse decodes and validates a campsite catalog. Every site must have
// an ID unique within the catalog, a name and in-range coordinates; a
// single bad site rejects the whole catalog rather than silently
// shrinking it.
func Parse(r io.Reader) ([]poi.Campsite, error) {
	var doc catalogFile
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog JSON: %w", err)
	}

	seen := make(map[string]bool, len(doc.Sites))
	for i, site := range doc.Sites {
		if site.ID == "" {
			return nil, fmt.Errorf("site at index %d has no id", i)
		}
		if seen[site.ID] {
			return nil, fmt.Errorf("duplicate site id %q", site.ID)
		}
		seen[site.ID] = true

		if site.Name == "" {
			return nil, fmt.Errorf("site %s has no name", site.ID)
		}
		if site.Latitude < -90 || site.Latitude > 90 {
			return nil, fmt.Errorf("site %s has latitude %.4f out of range", site.ID, site.Latitude)
		}
		if site.Longitude < -180 || site.Longitude > 180 {
			return nil, fmt.Errorf("site %s has longitude %.4f out of range", site.ID, site.Longitude)
		}
		switch site.Type {
		case poi.TypeCampsite, poi.TypeAire, poi.TypeParking, poi.TypeWild:
		default:
			return nil, fmt.Errorf("site %s has unknown type %q", site.ID, site.Type)
		}
	}

	return doc.Sites, nil
}
