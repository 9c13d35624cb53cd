package keybot

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestCallService(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/vapi-calls", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("include_quotes") == "true" {
			writeJSON(w, `{"quotes":[{"id":1,"quote_number":"Q-9","customer_phone":"555","amount":120,"status":"pending"}]}`)
			return
		}
		writeJSON(w, `{"calls":[{"id":4,"phone_number":"555","duration":95,"call_type":"inbound"}]}`)
	})
	env := newTestEnv(t, mux)
	ctx := context.Background()

	calls, err := env.client.Calls.Recent(ctx)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(calls) != 1 || calls[0].DurationTime() != 95*time.Second {
		t.Fatalf("calls = %#v", calls)
	}
	quotes, err := env.client.Calls.Quotes(ctx)
	if err != nil {
		t.Fatalf("Quotes returned error: %v", err)
	}
	if len(quotes) != 1 || quotes[0].QuoteNumber != "Q-9" || quotes[0].Amount != 120 {
		t.Fatalf("quotes = %#v", quotes)
	}
}
