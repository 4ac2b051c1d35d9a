// Package yaml implements github.com/zoobzio/witness's RegistryCodec
// over the textual registry wire grammar, using gopkg.in/yaml.v3.
package yaml

import (
	"github.com/zoobzio/witness"
	"gopkg.in/yaml.v3"
)

type registryCodec struct{}

// New returns a RegistryCodec that marshals a Registry to and from YAML.
func New() witness.RegistryCodec {
	return &registryCodec{}
}

// Marshal renders r as a YAML mapping with container entries in
// lexicographic name order, matching the deterministic-diff requirement
// of the textual wire format.
func (c *registryCodec) Marshal(r *witness.Registry) ([]byte, error) {
	entries := witness.RegistryEntries(r)
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range entries {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Name}
		valNode := &yaml.Node{}
		if err := valNode.Encode(e.Value); err != nil {
			return nil, err
		}
		root.Content = append(root.Content, keyNode, valNode)
	}
	return yaml.Marshal(root)
}

// Unmarshal parses YAML container entries into an unfinalized Registry;
// callers that need the named-type and variant-gap checks should call
// Registry.Finalize on the result.
func (c *registryCodec) Unmarshal(data []byte) (*witness.Registry, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	entries := make([]witness.RegistryEntry, 0, len(raw))
	for name, v := range raw {
		entries = append(entries, witness.RegistryEntry{Name: name, Value: v})
	}
	return witness.RegistryFromEntries(entries)
}
