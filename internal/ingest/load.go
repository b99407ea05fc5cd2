package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/scaleguardhq/scaleguard-engine/internal/models"
)

// Validate checks a topology for duplicate node ids and edges referencing
// unknown nodes. The first problem found is returned.
func Validate(topo models.Topology) error {
	seen := make(map[string]struct{}, len(topo.Nodes))
	for _, n := range topo.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node %q has an empty id", n.Name)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	for _, e := range topo.Edges {
		if _, ok := seen[e.Source]; !ok {
			return fmt.Errorf("edge %s->%s references unknown source %q", e.Source, e.Target, e.Source)
		}
		if _, ok := seen[e.Target]; !ok {
			return fmt.Errorf("edge %s->%s references unknown target %q", e.Source, e.Target, e.Target)
		}
	}
	return nil
}

// LoadFile reads a topology from a YAML or JSON file, chosen by extension,
// and validates it.
func LoadFile(path string) (models.Topology, error) {
	var topo models.Topology
	data, err := os.ReadFile(path)
	if err != nil {
		return topo, fmt.Errorf("reading topology file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &topo); err != nil {
			return topo, fmt.Errorf("parsing topology JSON %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &topo); err != nil {
			return topo, fmt.Errorf("parsing topology YAML %s: %w", path, err)
		}
	default:
		return topo, fmt.Errorf("unsupported topology file extension %q", filepath.Ext(path))
	}

	if err := Validate(topo); err != nil {
		return topo, fmt.Errorf("invalid topology in %s: %w", path, err)
	}
	return topo, nil
}
