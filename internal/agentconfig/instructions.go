package agentconfig

import (
	"fmt"
	"strings"
)

const DefaultPersonality = "professional and friendly"

var defaultCapabilities = []string{
	"Answer questions clearly and concisely",
	"Help the user with their requests",
}

var defaultRules = []string{
	"Always keep a professional and respectful tone",
	"If you don't know something, admit it honestly",
	"Be concise but complete in your answers",
	"Use emoji where appropriate to keep the conversation friendly",
}

// RenderInstructions builds the system prompt for an agent from its purpose,
// personality, capabilities and rules. Empty capability/rule lists fall back
// to sensible defaults.
func RenderInstructions(purpose, personality string, capabilities, rules []string) string {
	if personality == "" {
		personality = DefaultPersonality
	}
	if len(capabilities) == 0 {
		capabilities = defaultCapabilities
	}
	if len(rules) == 0 {
		rules = defaultRules
	}

	var caps strings.Builder
	for _, c := range capabilities {
		fmt.Fprintf(&caps, "- %s\n", c)
	}
	var ruleText strings.Builder
	for i, r := range rules {
		fmt.Fprintf(&ruleText, "%d. %s\n", i+1, r)
	}

	return fmt.Sprintf(`You are a specialized assistant with the following purpose:

PRIMARY PURPOSE:
%s

PERSONALITY:
%s

CAPABILITIES:
%s
BEHAVIOR RULES:
%s
RESPONSE FORMAT:
- Answer in a clear, structured way
- Use bullet points or numbering where appropriate
- Include examples when they help clarify
`, purpose, personality, caps.String(), ruleText.String())
}
