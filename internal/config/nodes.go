package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"gitlab.com/fog-offload.net/internal/domain"
)

type nodesFile struct {
	Nodes []domain.Node `yaml:"nodes"`
}

// LoadNodeDirectory reads the static fog node list from a YAML file
func LoadNodeDirectory(path string) (domain.NodeDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read nodes file %s: %w", path, err)
	}
	return ParseNodeDirectory(data)
}

// ParseNodeDirectory decodes and validates a YAML node list
func ParseNodeDirectory(data []byte) (domain.NodeDirectory, error) {
	var f nodesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse nodes file: %w", err)
	}
	if len(f.Nodes) == 0 {
		return nil, fmt.Errorf("nodes file lists no fog nodes")
	}

	seen := make(map[string]struct{}, len(f.Nodes))
	for i, n := range f.Nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("node %d has no id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
		if n.URL == "" {
			if n.Port == 0 {
				return nil, fmt.Errorf("node %q needs a url or a port", n.ID)
			}
			f.Nodes[i].URL = fmt.Sprintf("http://localhost:%d", n.Port)
		}
		f.Nodes[i].URL = strings.TrimRight(f.Nodes[i].URL, "/")
	}
	return domain.NewNodeDirectory(f.Nodes), nil
}
