package ui

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	liveui "github.com/liveui/live-ui"
)

// fallbackTmpl is parsed once; both the streaming and non-streaming paths synthesize
// fallback documents through it, so the output structure cannot drift between them.
var fallbackTmpl = template.Must(template.ParseFS(liveui.TemplateFS, "templates/fallback.html"))

type fallbackData struct {
	Text        string
	GeneratedAt string
}

// FallbackPage wraps raw model output in a complete, self-contained styled HTML
// document. It is used whenever the model response does not carry the sentinel marker.
// The text is embedded escaped; model output is not trusted to be safe markup.
func FallbackPage(text string, generatedAt time.Time) (string, error) {
	var sb strings.Builder
	err := fallbackTmpl.Execute(&sb, fallbackData{
		Text:        text,
		GeneratedAt: generatedAt.Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute fallback template: %w", err)
	}
	return sb.String(), nil
}
