package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/keybot/keybot/internal/api"
	"github.com/keybot/keybot/internal/config"
	"github.com/keybot/keybot/internal/credentials"
	"github.com/keybot/keybot/internal/keybot"
	"github.com/keybot/keybot/internal/logging"
	"github.com/keybot/keybot/internal/prefs"
	"github.com/keybot/keybot/internal/state"
	"github.com/keybot/keybot/internal/ui"
)

// Options configure the KeyBot application.
type Options struct {
	ConfigPath string
	LogLevel   string            // overrides the configured level when set
	Stderr     io.Writer         // toast output; nil uses os.Stderr
	Transport  http.RoundTripper // nil uses http.DefaultTransport
	PrefsPath  string            // empty uses prefs.DefaultPath
}

// App holds everything a command needs, wired once per process.
type App struct {
	Config      config.Config
	Logger      *slog.Logger
	Credentials *credentials.Store
	API         *api.Client
	KeyBot      *keybot.Client
	Theme       ui.Theme
	Stderr      io.Writer

	toasts    *toastGate
	closeLog  func() error
	prefsPath string
}

// New loads configuration and builds the API client stack.
func New(opts Options) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	theme := cfg.Theme
	if p := prefs.Load(opts.PrefsPath); p.Theme != "" {
		theme = p.Theme
	}
	a := &App{Config: cfg, Stderr: stderr, Theme: ui.GetTheme(theme), prefsPath: opts.PrefsPath}

	logger, closeLog, err := logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.IsDev(), a.LogPath())
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	a.Logger = logger
	a.closeLog = closeLog

	creds, err := credentials.Open(cfg.TokenPath)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open credentials: %w", err)
	}
	a.Credentials = creds

	hosts, err := cfg.Hosts()
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("resolve hosts: %w", err)
	}

	a.toasts = &toastGate{next: ui.NewToastNotifier(stderr, a.Theme)}
	apiOpts := []api.Option{
		api.WithTokenSource(creds.Token),
		api.WithNotifier(a.toasts),
		api.WithLogger(logger.With("component", "api")),
		api.WithDefaultTimeout(cfg.Timeout),
	}
	if cfg.RateLimit > 0 {
		apiOpts = append(apiOpts, api.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)))
	}
	if opts.Transport != nil {
		apiOpts = append(apiOpts, api.WithTransport(opts.Transport))
	}
	client, err := api.New(hosts, apiOpts...)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	a.API = client

	kb, err := keybot.New(client)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("init keybot client: %w", err)
	}
	a.KeyBot = kb

	logger.Debug("keybot initialized",
		"primary", hosts.Primary.String(),
		"fallback", hosts.Fallback.String(),
		"environment", cfg.Environment,
		"rate_limit", cfg.RateLimit)
	return a, nil
}

// LogPath returns the JSON log file, or "" when logs go to stderr.
func (a *App) LogPath() string {
	if a.Config.IsDev() {
		return ""
	}
	return a.Config.LogPath
}

// Close flushes and closes the log file.
func (a *App) Close() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

// Watch runs the live dashboard until the user quits or ctx ends. Toasts are
// held back while the full-screen UI owns the terminal; failures still reach
// the log and the header.
func (a *App) Watch(ctx context.Context, interval time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.toasts.setMuted(true)
	defer a.toasts.setMuted(false)

	store := &state.Store{}
	StartPoller(ctx, store, a.KeyBot.Dashboard, interval, a.Logger)

	return ui.Run(ui.Options{
		Context:       ctx,
		Store:         store,
		PollTick:      time.Second,
		ThemeName:     a.Theme.Name,
		LogPath:       a.LogPath(),
		Origin:        a.Config.Origin,
		OnThemeChange: a.saveTheme,
	})
}

func (a *App) saveTheme(name string) {
	if err := prefs.Save(a.prefsPath, prefs.Prefs{Theme: name}); err != nil {
		a.Logger.Warn("save theme preference failed", "theme", name, "error", err)
		return
	}
	a.Theme = ui.GetTheme(name)
}

// RunUpload draws fn's progress on out. Toasts raised while the bar is on
// screen are printed once it has finished.
func (a *App) RunUpload(ctx context.Context, out io.Writer, name string, size int64, fn ui.UploadFunc) error {
	release := a.toasts.hold()
	defer release()
	return ui.RunUpload(ctx, out, name, size, a.Theme, fn)
}

// toastGate forwards toasts. While muted they are dropped; while held they
// queue until release.
type toastGate struct {
	mu      sync.Mutex
	muted   bool
	holding bool
	held    []api.Toast
	next    api.Notifier
}

func (g *toastGate) Notify(t api.Toast) {
	g.mu.Lock()
	switch {
	case g.muted:
		g.mu.Unlock()
		return
	case g.holding:
		g.held = append(g.held, t)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	g.next.Notify(t)
}

func (g *toastGate) setMuted(muted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.muted = muted
}

func (g *toastGate) hold() (release func()) {
	g.mu.Lock()
	g.holding = true
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		held := g.held
		g.held, g.holding = nil, false
		g.mu.Unlock()
		for _, t := range held {
			g.next.Notify(t)
		}
	}
}
