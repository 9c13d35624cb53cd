package ui

import (
	"io"
	"strings"
	"sync"

	"github.com/keybot/keybot/internal/api"
)

// ToastNotifier prints every toast as a single styled line. It is safe for
// concurrent use and never blocks on anything but the writer.
type ToastNotifier struct {
	mu     sync.Mutex
	w      io.Writer
	styles Styles
}

var _ api.Notifier = (*ToastNotifier)(nil)

// NewToastNotifier returns a notifier writing to w in the given theme.
func NewToastNotifier(w io.Writer, theme Theme) *ToastNotifier {
	return &ToastNotifier{w: w, styles: theme.Styles()}
}

// Notify implements api.Notifier.
func (n *ToastNotifier) Notify(t api.Toast) {
	line := renderToast(n.styles, t) + "\n"
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = io.WriteString(n.w, line)
}

func renderToast(s Styles, t api.Toast) string {
	icon, style := "•", s.InfoText
	switch t.Level {
	case api.LevelError:
		icon, style = "✗", s.DangerText
	case api.LevelSuccess:
		icon, style = "✓", s.SuccessText
	}
	msg := strings.Join(strings.Fields(t.Message), " ")
	if t.Title == "" {
		return style.Render(icon) + " " + s.Text.Render(msg)
	}
	return style.Render(icon+" "+t.Title+":") + " " + s.Text.Render(msg)
}
