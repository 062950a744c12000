package mode

import "strings"

// Mode is the output shape of a search.
type Mode string

// Search mode constants.
const (
	// Structured returns allow-listed tour fields.
	Structured Mode = "structured"
	// Markdown returns a rendered prose digest.
	Markdown Mode = "markdown"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Structured || m == Markdown
}

// Parse maps user input to a Mode. Empty input selects Structured.
func Parse(s string) (Mode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "json", string(Structured):
		return Structured, true
	case "md", string(Markdown):
		return Markdown, true
	}
	return "", false
}
