package events

import (
	"io/fs"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/spotonhq/spoton/pkg/errors"
)

// SeedFile is the path of the seed catalog inside a seed filesystem.
const SeedFile = "seed/events.yaml"

// LoadSeed reads and validates the seed catalog from the given filesystem.
// The seed ships inside the binary, so any problem with it is a build
// defect: malformed YAML, a missing file, a bad id, or a duplicate id all
// fail the load rather than degrade the catalog.
func LoadSeed(fsys fs.FS) ([]Event, error) {
	data, err := fs.ReadFile(fsys, SeedFile)
	if err != nil {
		return nil, errors.NewConfigError("seed", "seed catalog missing", err)
	}

	var seed []Event
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, errors.WrapParse("yaml", SeedFile, err)
	}

	seen := make(map[string]bool, len(seed))
	for i := range seed {
		e := &seed[i]
		e.Origin = OriginSeed
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(e.ID, SeedIDPrefix) {
			return nil, errors.NewValidationError("id", e.ID, "seed ids must start with "+SeedIDPrefix)
		}
		if seen[e.ID] {
			return nil, errors.NewValidationError("id", e.ID, "duplicate seed id")
		}
		seen[e.ID] = true
	}
	return seed, nil
}
