// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
)

// defaultPrompt is used when no prompt file is configured. The batch text is
// substituted at {{.Text}}.
const defaultPrompt = `The following text was recognised from scanned pages of printed emails. Rewrite every email you can find as a JSON object with these fields:
- "date": the sent date and time as YYYY-MM-DDTHH:MM:SS
- "from": the sender
- "to": the recipients
- "subject": the subject line
- "body": the message text with OCR noise removed

Output one JSON object per email and separate objects with a blank line. Do not include any text outside the JSON objects.

Scanned text:
{{.Text}}
`

// Prompt renders the instruction sent with each batch.
type Prompt struct {
	tmpl *template.Template
}

// ParsePrompt parses a template with a single {{.Text}} substitution.
func ParsePrompt(name, text string) (*Prompt, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template %s: %w", name, err)
	}
	return &Prompt{tmpl: tmpl}, nil
}

// LoadPrompt reads the template at path. An empty path selects the built-in
// template.
func LoadPrompt(path string) (*Prompt, error) {
	if path == "" {
		return ParsePrompt("default", defaultPrompt)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt template: %w", err)
	}
	return ParsePrompt(path, string(data))
}

// Render substitutes the batch text into the template.
func (p *Prompt) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
