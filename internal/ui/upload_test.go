package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keybot/keybot/internal/api"
)

func updateUpload(t *testing.T, m UploadModel, msg tea.Msg) (UploadModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	um, ok := next.(UploadModel)
	if !ok {
		t.Fatalf("Update returned %T, want UploadModel", next)
	}
	return um, cmd
}

func TestUploadModel_ProgressNeverGoesBackwards(t *testing.T) {
	m := NewUploadModel("pricing.csv", 2048, GetTheme("Nightfox"))

	m, _ = updateUpload(t, m, uploadProgressMsg(30))
	m, _ = updateUpload(t, m, uploadProgressMsg(20))
	if m.Percent() != 30 {
		t.Fatalf("Percent = %d, want 30", m.Percent())
	}
	view := m.View()
	if !strings.Contains(view, "Uploading pricing.csv") || !strings.Contains(view, "30%") {
		t.Fatalf("View = %q, want name and 30%%", view)
	}
	if !strings.Contains(view, "2.00 KiB") {
		t.Fatalf("View = %q, want size", view)
	}

	m, cmd := updateUpload(t, m, uploadDoneMsg{})
	if cmd == nil {
		t.Fatalf("done should quit the program")
	}
	if m.Percent() != 100 || !strings.Contains(m.View(), "✓ Uploaded pricing.csv") {
		t.Fatalf("View after success = %q", m.View())
	}
}

func TestUploadModel_Failure(t *testing.T) {
	m := NewUploadModel("call.mp3", 10, GetTheme("Slate"))
	m, _ = updateUpload(t, m, uploadProgressMsg(40))
	m, _ = updateUpload(t, m, uploadDoneMsg{err: errors.New("disk full")})

	if m.Percent() != 40 {
		t.Fatalf("Percent = %d, want 40 after failure", m.Percent())
	}
	if !strings.Contains(m.View(), "✗ Upload failed: call.mp3") {
		t.Fatalf("View = %q, want failure line", m.View())
	}
}

func TestUploadModel_UnknownSizeHasNoBar(t *testing.T) {
	m := NewUploadModel("stream.bin", -1, GetTheme("Kanagawa"))
	view := m.View()
	if !strings.Contains(view, "size unknown") || strings.Contains(view, "%") {
		t.Fatalf("View = %q, want unknown size without percentage", view)
	}
}

func TestRunUpload_ReturnsUploadResult(t *testing.T) {
	var out bytes.Buffer
	err := RunUpload(context.Background(), &out, "pricing.csv", 100, GetTheme("Nightfox"),
		func(ctx context.Context, onProgress api.ProgressFunc) error {
			onProgress(50)
			onProgress(100)
			return nil
		})
	if err != nil {
		t.Fatalf("RunUpload returned error: %v", err)
	}
	if !strings.Contains(out.String(), "pricing.csv") {
		t.Fatalf("output = %q, want file name", out.String())
	}

	wantErr := errors.New("disk full")
	err = RunUpload(context.Background(), &out, "pricing.csv", 100, GetTheme("Nightfox"),
		func(ctx context.Context, onProgress api.ProgressFunc) error {
			return wantErr
		})
	if !errors.Is(err, wantErr) {
		t.Fatalf("RunUpload error = %v, want %v", err, wantErr)
	}
}

func TestRunUpload_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := RunUpload(ctx, &out, "big.bin", 1<<20, GetTheme("Nightfox"),
		func(ctx context.Context, onProgress api.ProgressFunc) error {
			<-ctx.Done()
			return ctx.Err()
		})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunUpload error = %v, want context.Canceled", err)
	}
}
