package enforce

import (
	"io"

	"gopkg.in/yaml.v3"
)

// FlowPolicy is one preloaded flow override.
type FlowPolicy struct {
	FlowID uint64 `yaml:"flow_id" json:"flow_id"`
	Action Action `yaml:"action" json:"action"`
}

// PolicyConfig seeds the engine at startup.
type PolicyConfig struct {
	DefaultAction Action       `yaml:"default_action" json:"default_action"`
	Flows         []FlowPolicy `yaml:"flows" json:"flows"`
}

// LoadPolicyConfig parses a YAML policy document.
func LoadPolicyConfig(r io.Reader) (*PolicyConfig, error) {
	config := &PolicyConfig{}
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}

// Apply installs the default action and flow overrides on an engine.
func (c *PolicyConfig) Apply(e Engine) error {
	e.SetDefaultAction(c.DefaultAction)
	for _, fp := range c.Flows {
		if err := e.EnforceFlowPolicy(fp.FlowID, fp.Action); err != nil {
			return err
		}
	}
	return nil
}
