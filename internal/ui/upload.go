package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keybot/keybot/internal/api"
)

const uploadBarWidth = 40

// UploadFunc performs an upload, reporting progress through onProgress.
type UploadFunc func(ctx context.Context, onProgress api.ProgressFunc) error

type uploadProgressMsg int

type uploadDoneMsg struct{ err error }

// UploadModel renders a single file upload.
type UploadModel struct {
	name    string
	size    int64
	bar     progress.Model
	styles  Styles
	percent int
	done    bool
	err     error
}

// NewUploadModel returns a model for uploading name. A negative size means
// the length is unknown and no bar is drawn.
func NewUploadModel(name string, size int64, theme Theme) UploadModel {
	return UploadModel{
		name:   name,
		size:   size,
		styles: theme.Styles(),
		bar: progress.New(
			progress.WithGradient(theme.Accent, theme.Success),
			progress.WithWidth(uploadBarWidth),
		),
	}
}

// Init implements tea.Model.
func (m UploadModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m UploadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case uploadProgressMsg:
		if p := int(msg); p > m.percent {
			m.percent = min(p, 100)
		}
		return m, nil
	case uploadDoneMsg:
		m.done = true
		m.err = msg.err
		if msg.err == nil && m.size >= 0 {
			m.percent = 100
		}
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m UploadModel) View() string {
	name := truncateMiddle(m.name, 48)
	var b strings.Builder
	switch {
	case m.done && m.err != nil:
		b.WriteString(m.styles.DangerText.Render("✗ Upload failed: " + name))
	case m.done:
		b.WriteString(m.styles.SuccessText.Render("✓ Uploaded " + name))
	default:
		b.WriteString(m.styles.Text.Render("Uploading " + name))
	}
	if m.size >= 0 {
		b.WriteString(m.styles.MutedText.Render(" (" + formatBytes(m.size) + ")"))
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
	} else if !m.done {
		b.WriteString(m.styles.MutedText.Render(" (size unknown)"))
	}
	b.WriteString("\n")
	return b.String()
}

// Percent returns the last reported progress.
func (m UploadModel) Percent() int {
	return m.percent
}

// RunUpload drives fn under a Bubble Tea progress program writing to out.
// It returns fn's error once both the upload and the program have finished.
func RunUpload(ctx context.Context, out io.Writer, name string, size int64, theme Theme, fn UploadFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewUploadModel(name, size, theme),
		tea.WithContext(ctx),
		tea.WithOutput(out),
		tea.WithInput(nil),
	)

	done := make(chan error, 1)
	go func() {
		err := fn(ctx, func(percent int) {
			p.Send(uploadProgressMsg(percent))
		})
		done <- err
		p.Send(uploadDoneMsg{err: err})
	}()

	_, runErr := p.Run()
	cancel()
	err := <-done
	if err != nil {
		return err
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("render upload progress: %w", runErr)
	}
	return nil
}
