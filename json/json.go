// Package json implements github.com/zoobzio/witness's RegistryCodec over
// the textual registry wire grammar, using encoding/json.
package json

import (
	"encoding/json"

	"github.com/zoobzio/witness"
)

type registryCodec struct{}

// New returns a RegistryCodec that marshals a Registry to and from JSON.
func New() witness.RegistryCodec {
	return &registryCodec{}
}

// Marshal renders r as a JSON object. encoding/json sorts map[string]any
// keys lexicographically on its own, so building the object straight from
// RegistryEntries already produces the deterministic order the textual
// wire format requires.
func (c *registryCodec) Marshal(r *witness.Registry) ([]byte, error) {
	entries := witness.RegistryEntries(r)
	obj := make(map[string]any, len(entries))
	for _, e := range entries {
		obj[e.Name] = e.Value
	}
	return json.Marshal(obj)
}

// Unmarshal parses JSON container entries into an unfinalized Registry;
// callers that need the named-type and variant-gap checks should call
// Registry.Finalize on the result.
func (c *registryCodec) Unmarshal(data []byte) (*witness.Registry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	entries := make([]witness.RegistryEntry, 0, len(raw))
	for name, v := range raw {
		entries = append(entries, witness.RegistryEntry{Name: name, Value: v})
	}
	return witness.RegistryFromEntries(entries)
}
