package events

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotonhq/spoton/pkg/errors"
)

func seedFS(yaml string) fstest.MapFS {
	return fstest.MapFS{
		SeedFile: &fstest.MapFile{Data: []byte(yaml)},
	}
}

func TestLoadSeed(t *testing.T) {
	fsys := seedFS(`
- id: seed-01
  name: Jazz Night
  date: Nov 17, 2025
  location: Peja Cultural Hall
  price: 20
  image: https://img.example/jazz.jpg
- id: seed-02
  name: Food Festival
  date: Dec 5, 2025
  location: Mother Teresa Square
  price: 0
`)
	seed, err := LoadSeed(fsys)
	require.NoError(t, err)
	require.Len(t, seed, 2)
	assert.Equal(t, OriginSeed, seed[0].Origin)
	assert.Equal(t, "seed-01", seed[0].ID)
	assert.Equal(t, 20.0, seed[0].Price)
}

func TestLoadSeedMissingFile(t *testing.T) {
	_, err := LoadSeed(fstest.MapFS{})
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadSeedMalformedYAML(t *testing.T) {
	_, err := LoadSeed(seedFS("{not yaml"))
	require.Error(t, err)
	var parseErr *errors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestLoadSeedValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "- id: seed-01\n  date: Nov 17, 2025\n  location: x\n"},
		{"missing id", "- name: Jazz Night\n  date: Nov 17, 2025\n  location: x\n"},
		{"bad id prefix", "- id: ev-01\n  name: Jazz Night\n  date: Nov 17, 2025\n  location: x\n"},
		{"duplicate id", "- id: seed-01\n  name: A\n  date: Nov 17, 2025\n  location: x\n- id: seed-01\n  name: B\n  date: Nov 18, 2025\n  location: x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(seedFS(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}
