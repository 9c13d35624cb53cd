package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/keybot/keybot/internal/api"
)

// fakeAPI serves canned /api routes and records what it saw.
type fakeAPI struct {
	mu       sync.Mutex
	auth     []string
	uploads  []string
	requests []string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/customers", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "data": []map[string]any{
			{"id": 1, "name": "Ada Lovelace", "phone": "555-0100", "email": "ada@example.com", "status": "active", "total_spent": 120.5},
			{"id": 2, "name": "Grace Hopper", "phone": "555-0101", "email": "grace@example.com", "status": "active"},
		}})
	})
	mux.HandleFunc("GET /api/customers/{id}/notes", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"customer not found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("POST /api/customers/{id}/notes", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.record("note:" + r.PathValue("id") + ":" + body["content"])
		writeJSON(w, map[string]any{"success": true})
	})
	mux.HandleFunc("POST /api/customers/{id}/files", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		f.mu.Lock()
		f.uploads = append(f.uploads, header.Filename+"="+string(data))
		f.mu.Unlock()
		writeJSON(w, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /api/quotes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "data": []map[string]any{
			{"id": 7, "quote_number": "Q-7", "customer_name": "Ada Lovelace", "status": "pending", "price": 89},
			{"id": "8", "quote_number": "Q-8", "customer_name": "Grace Hopper", "status": "accepted", "price": 150},
		}})
	})
	mux.HandleFunc("GET /api/appointments", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": true, "data": []map[string]any{}})
	})
	mux.HandleFunc("GET /api/vapi-calls", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"calls": []map[string]any{
			{"id": 3, "phone_number": "555-0199", "timestamp": "2025-06-01T08:00:00Z", "duration": 95, "call_type": "inbound"},
		}})
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.auth = append(f.auth, r.Header.Get("Authorization"))
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) record(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, s)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	t       *testing.T
	home    string
	config  string
	fake    *fakeAPI
	lastOut string
	lastErr string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, key := range []string{
		"KEYBOT_ORIGIN", "KEYBOT_API_BASE", "KEYBOT_TIMEOUT", "KEYBOT_LOG_LEVEL",
		"KEYBOT_ENV", "KEYBOT_TOKEN_PATH", "KEYBOT_LOG_PATH", "KEYBOT_RATE_LIMIT",
		"KEYBOT_RATE_BURST", "KEYBOT_THEME",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	home := t.TempDir()
	t.Setenv("HOME", home)

	fake := &fakeAPI{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	cfg := filepath.Join(home, "config.toml")
	body := fmt.Sprintf("origin = %q\nenvironment = \"test\"\ntoken_path = %q\n", srv.URL, filepath.Join(home, "creds.toml"))
	if err := os.WriteFile(cfg, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return &harness{t: t, home: home, config: cfg, fake: fake}
}

func (h *harness) run(stdin string, args ...string) error {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	root, c := newRootCmd(&stdout, &stderr)
	defer c.close()
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--config", h.config}, args...))
	err := root.Execute()
	h.lastOut, h.lastErr = stdout.String(), stderr.String()
	return err
}

func TestCustomersList_Text(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "customers", "list"); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Ada Lovelace", "Grace Hopper", "$120.50", "Status"} {
		if !strings.Contains(h.lastOut, want) {
			t.Fatalf("expected %q in output:\n%s", want, h.lastOut)
		}
	}
}

func TestCustomersList_JSONSearch(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "customers", "list", "-o", "json", "--search", "grace"); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal([]byte(h.lastOut), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, h.lastOut)
	}
	if len(got) != 1 || got[0]["name"] != "Grace Hopper" {
		t.Fatalf("unexpected customers: %v", got)
	}
}

func TestLoginThenRequestsCarryToken(t *testing.T) {
	h := newHarness(t)
	if err := h.run("tok-abc\n", "login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(h.lastOut, "Login:") {
		t.Fatalf("expected success toast, got %q", h.lastOut)
	}
	if err := h.run("", "quotes", "list"); err != nil {
		t.Fatalf("quotes list: %v", err)
	}
	h.fake.mu.Lock()
	last := h.fake.auth[len(h.fake.auth)-1]
	h.fake.mu.Unlock()
	if last != "Bearer tok-abc" {
		t.Fatalf("Authorization = %q", last)
	}

	if err := h.run("", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := h.run("", "quotes", "list"); err != nil {
		t.Fatalf("quotes list: %v", err)
	}
	h.fake.mu.Lock()
	last = h.fake.auth[len(h.fake.auth)-1]
	h.fake.mu.Unlock()
	if last != "" {
		t.Fatalf("Authorization after logout = %q", last)
	}
}

func TestLogin_EmptyToken(t *testing.T) {
	h := newHarness(t)
	if err := h.run("\n", "login"); err == nil || !strings.Contains(err.Error(), "token is empty") {
		t.Fatalf("expected empty token error, got %v", err)
	}
}

func TestFailedCallToastsOnce(t *testing.T) {
	h := newHarness(t)
	err := h.run("", "customers", "notes", "9")
	if !api.IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 api error, got %v", err)
	}
	if got := strings.Count(h.lastErr, "API Error: customer not found"); got != 1 {
		t.Fatalf("expected one toast, got %d in %q", got, h.lastErr)
	}
}

func TestCustomersNotesAdd(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "customers", "notes", "add", "4", "called", "back"); err != nil {
		t.Fatalf("run: %v", err)
	}
	h.fake.mu.Lock()
	defer h.fake.mu.Unlock()
	if len(h.fake.requests) != 1 || h.fake.requests[0] != "note:4:called back" {
		t.Fatalf("requests = %v", h.fake.requests)
	}
}

func TestInvalidCustomerID(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "customers", "show", "abc"); err == nil || !strings.Contains(err.Error(), "invalid customer id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestGetPrettyPrints(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "get", "/quotes"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(h.lastOut, "\"quote_number\": \"Q-7\"") {
		t.Fatalf("expected indented JSON, got:\n%s", h.lastOut)
	}
}

func TestGet_InvalidQuery(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "get", "/quotes", "--query", "nope"); err == nil || !strings.Contains(err.Error(), "invalid query") {
		t.Fatalf("expected invalid query error, got %v", err)
	}
}

func TestQuotesList_StatusFilter(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "quotes", "list", "--status", "ACCEPTED"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(h.lastOut, "Q-8") || strings.Contains(h.lastOut, "Q-7") {
		t.Fatalf("unexpected output:\n%s", h.lastOut)
	}
}

func TestQuotesCreate_ValidatesBeforeSending(t *testing.T) {
	h := newHarness(t)
	err := h.run("", "quotes", "create", "--customer", "Ada")
	if err == nil || !strings.Contains(err.Error(), "phone is required") {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := api.AsError(err); ok {
		t.Fatal("validation error should not be an api error")
	}
}

func TestDashboard_Text(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "dashboard"); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, want := range []string{"Customers", "No upcoming appointments", "555-0199", "1:35"} {
		if !strings.Contains(h.lastOut, want) {
			t.Fatalf("expected %q in dashboard:\n%s", want, h.lastOut)
		}
	}
}

func TestDashboard_JSON(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "dashboard", "-o", "json"); err != nil {
		t.Fatalf("run: %v", err)
	}
	var got struct {
		Customers      int            `json:"customers"`
		Quotes         int            `json:"quotes"`
		QuotesByStatus map[string]int `json:"quotes_by_status"`
	}
	if err := json.Unmarshal([]byte(h.lastOut), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Customers != 2 || got.Quotes != 2 || got.QuotesByStatus["pending"] != 1 {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestUploadCustomerFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(h.home, "invoice.txt")
	if err := os.WriteFile(path, []byte("paid"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := h.run("", "upload", "customer", "5", path, "--quiet"); err != nil {
		t.Fatalf("run: %v", err)
	}
	h.fake.mu.Lock()
	defer h.fake.mu.Unlock()
	if len(h.fake.uploads) != 1 || h.fake.uploads[0] != "invoice.txt=paid" {
		t.Fatalf("uploads = %v", h.fake.uploads)
	}
	if !strings.Contains(h.lastOut, "invoice.txt uploaded") {
		t.Fatalf("expected success toast, got %q", h.lastOut)
	}
}

func TestUpload_MissingFile(t *testing.T) {
	h := newHarness(t)
	err := h.run("", "upload", "customer", "5", filepath.Join(h.home, "nope.txt"), "--quiet")
	if err == nil || !strings.Contains(err.Error(), "stat upload") {
		t.Fatalf("expected stat error, got %v", err)
	}
}

func TestLogs_DevModeUsesStderr(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "logs"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(h.lastOut, "Logging to stderr") {
		t.Fatalf("unexpected output: %q", h.lastOut)
	}
}

func TestLogs_TailsFile(t *testing.T) {
	h := newHarness(t)
	logPath := filepath.Join(h.home, "keybot.log")
	lines := `{"time":"2025-06-01T08:00:00Z","level":"INFO","msg":"first"}
{"time":"2025-06-01T08:00:01Z","level":"ERROR","msg":"api call failed","message":"boom"}
`
	if err := os.WriteFile(logPath, []byte(lines), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("KEYBOT_ENV", "prod")
	t.Setenv("KEYBOT_LOG_PATH", logPath)

	if err := h.run("", "logs", "-n", "1"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(h.lastOut, "api call failed") || strings.Contains(h.lastOut, "first") {
		t.Fatalf("unexpected tail:\n%s", h.lastOut)
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	h := newHarness(t)
	if err := h.run("", "customers", "list", "-o", "yaml"); err == nil || !strings.Contains(err.Error(), "invalid output format") {
		t.Fatalf("expected output format error, got %v", err)
	}
}
