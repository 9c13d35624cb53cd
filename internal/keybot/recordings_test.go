package keybot

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/keybot/keybot/internal/api"
)

func TestRecordingService_Get(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/recordings/Q-100", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":true,"data":{"url":"https://cdn.test/q100.mp3","customer_name":"Ann","quote_number":"Q-100"}}`)
	})
	mux.HandleFunc("GET /api/recordings/Q-404", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"success":true,"data":null}`)
	})
	env := newTestEnv(t, mux)

	rec, err := env.client.Recordings.Get(context.Background(), "Q-100")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.URL != "https://cdn.test/q100.mp3" || rec.QuoteNumber != "Q-100" {
		t.Fatalf("recording = %#v", rec)
	}
	if _, err := env.client.Recordings.Get(context.Background(), "Q-404"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := env.client.Recordings.Get(context.Background(), " "); err == nil {
		t.Fatalf("Get accepted empty quote number")
	}
}

func TestRecordingService_GetEscapesQuoteNumber(t *testing.T) {
	t.Parallel()

	var gotPath, gotNumber string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/recordings/{number}", func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotNumber = r.PathValue("number")
		writeJSON(w, `{"success":true,"data":{"url":"https://cdn.test/q1.mp3","quote_number":"Q/1"}}`)
	})
	env := newTestEnv(t, mux)

	if _, err := env.client.Recordings.Get(context.Background(), "Q/1"); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if gotPath != "/api/recordings/Q%2F1" || gotNumber != "Q/1" {
		t.Fatalf("server got path=%q number=%q", gotPath, gotNumber)
	}
}

func TestRecordingService_UploadAddsQuoteNumber(t *testing.T) {
	t.Parallel()

	var gotQuote, gotName string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/recordings/upload", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotQuote = r.FormValue("quote_number")
		if fh := r.MultipartForm.File["file"]; len(fh) == 1 {
			gotName = fh[0].Filename
		}
		writeJSON(w, `{"success":true}`)
	})
	env := newTestEnv(t, mux)

	up := api.BytesUpload("call.mp3", []byte("ID3"))
	up.Fields = map[string]string{"source": "cli"}
	if err := env.client.Recordings.Upload(context.Background(), "Q-100", up, nil); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if gotQuote != "Q-100" || gotName != "call.mp3" {
		t.Fatalf("server got quote=%q file=%q", gotQuote, gotName)
	}
	if _, ok := up.Fields["quote_number"]; ok {
		t.Fatalf("Upload mutated the caller's fields")
	}
}
