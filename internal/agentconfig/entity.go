package agentconfig

import "time"

// AgentConfig is a locally defined agent description. Configs are immutable
// once created; there is no update operation.
type AgentConfig struct {
	ID           string    `yaml:"id" json:"id"`
	Name         string    `yaml:"name" json:"name"`
	Description  string    `yaml:"description" json:"description"`
	Purpose      string    `yaml:"purpose" json:"purpose"`
	Personality  string    `yaml:"personality" json:"personality"`
	Capabilities []string  `yaml:"capabilities" json:"capabilities,omitempty"`
	Rules        []string  `yaml:"rules" json:"rules,omitempty"`
	Instructions string    `yaml:"instructions" json:"instructions"`
	CreatedAt    time.Time `yaml:"created_at" json:"created_at"`
}
