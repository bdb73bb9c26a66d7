// Package seed loads the fixture data the content store is populated with at
// startup. The same YAML layout is used for catalog snapshots, so a snapshot
// can be fed back in as a seed.
package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is one complete set of collections. Ids and timestamps in the
// file are ignored by the store: records get fresh ids in file order.
type Fixtures struct {
	Users     []content.User     `yaml:"users,omitempty"`
	Services  []content.Service  `yaml:"services"`
	Documents []content.Document `yaml:"documents"`
	Tutorials []content.Tutorial `yaml:"tutorials"`
}

// Default returns the embedded homelab fixtures.
func Default() (*Fixtures, error) {
	fx, err := Load(bytes.NewReader(defaultFixtures))
	if err != nil {
		return nil, fmt.Errorf("embedded fixtures: %w", err)
	}
	return fx, nil
}

// Load decodes fixtures from r. JSON input is accepted as well since it is
// valid YAML.
func Load(r io.Reader) (*Fixtures, error) {
	var fx Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		if err == io.EOF {
			return &fx, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFile reads fixtures from a file on disk.
func LoadFile(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Encode writes fx as YAML.
func Encode(w io.Writer, fx *Fixtures) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fx); err != nil {
		return err
	}
	return enc.Close()
}

// Total is the number of records across all collections.
func (fx *Fixtures) Total() int {
	return len(fx.Users) + len(fx.Services) + len(fx.Documents) + len(fx.Tutorials)
}
