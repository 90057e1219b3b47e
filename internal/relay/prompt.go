package relay

import "strings"

// Prompt renders the single-string prompt sent to the model.
type Prompt struct {
	Persona string
	Speaker string
}

// Render places the persona block first, then the user line, then the
// speaker label the model completes.
func (p Prompt) Render(text string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(p.Persona))
	b.WriteString("\n\nUser: ")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(p.Speaker)
	b.WriteString(":")
	return b.String()
}
