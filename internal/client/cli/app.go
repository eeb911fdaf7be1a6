package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authdesk/internal/client/client"
	"github.com/dmitrijs2005/authdesk/internal/client/config"
	"github.com/dmitrijs2005/authdesk/internal/client/models"
	"github.com/dmitrijs2005/authdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authdesk/internal/client/services"
	"github.com/dmitrijs2005/authdesk/internal/filex"
	"github.com/dmitrijs2005/authdesk/internal/logging"

	_ "modernc.org/sqlite"
)

// Mode is the last observed reachability of the Authentication API.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// pingTimeout bounds a single reachability probe.
const pingTimeout = 3 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	api     client.Client
	session *services.SessionManager
	admin   *services.AdminService
	reader  *bufio.Reader
	out     io.Writer

	mu          sync.RWMutex
	mode        Mode
	lastState   services.State
	unsubscribe func()
}

// NewApp opens the local database, the credential store and the API client
// and wires the session and admin services on top of them.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	dbPath, err := filex.ResolveFilePath(c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error preparing database path: %w", err)
	}

	db, err := client.InitDatabase(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store, err := openStore(ctx, db, c.StorageKey)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error opening credential store: %w", err)
	}

	apiClient, err := client.NewHTTPClient(c.ServerURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, logger, apiClient, store, bufio.NewReader(os.Stdin), os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, api client.Client, store metadata.Repository, reader *bufio.Reader, out io.Writer) *App {
	session := services.NewSessionManager(api, store, logger)
	return &App{
		config:    c,
		logger:    logger,
		api:       api,
		session:   session,
		admin:     services.NewAdminService(api, session),
		reader:    reader,
		out:       out,
		lastState: services.StateLoading,
	}
}

// openStore returns the plain SQLite store, sealed when a passphrase is set.
func openStore(ctx context.Context, db *sql.DB, passphrase string) (metadata.Repository, error) {
	repo := metadata.NewSQLiteRepository(db)
	if passphrase == "" {
		return repo, nil
	}
	return metadata.OpenSealed(ctx, repo, []byte(passphrase))
}

// Run restores the previous session and serves the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.unsubscribe = a.session.Subscribe(a.onSessionChange)

	fmt.Fprintln(a.out, "Welcome to authdesk CLI (type 'help' for commands)")
	fmt.Fprintf(a.out, "authdesk %s> restoring session...\n", a.getStatus())
	a.session.Initialize(ctx)

	if a.config.OnlineCheckInterval > 0 {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

// Close releases the API client and the database.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.api != nil {
		_ = a.api.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) isAdmin() bool {
	u := a.session.User()
	return u != nil && u.IsAdmin
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) getMode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

// getStatus renders the prompt status, e.g. "(ann admin online)".
func (a *App) getStatus() string {
	var parts []string

	switch a.session.State() {
	case services.StateLoading:
		parts = append(parts, "loading")
	case services.StateAuthenticated:
		if u := a.session.User(); u != nil {
			parts = append(parts, u.Username)
			if u.IsAdmin {
				parts = append(parts, "admin")
			}
		}
	default:
		parts = append(parts, "anonymous")
	}

	if mode := a.getMode(); mode != "" {
		parts = append(parts, string(mode))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// onSessionChange announces sign-in and sign-out. Profile updates keep the
// state and print nothing.
func (a *App) onSessionChange(state services.State, user *models.User) {
	a.mu.Lock()
	prev := a.lastState
	a.lastState = state
	a.mu.Unlock()

	switch {
	case state == services.StateAuthenticated && prev != services.StateAuthenticated && user != nil:
		fmt.Fprintf(a.out, "Signed in as %s\n", user.Username)
	case state == services.StateAnonymous && prev == services.StateAuthenticated:
		fmt.Fprintln(a.out, "Signed out")
	}
}

// StartOnlineStatusWatcher probes the API every interval and flips the
// prompt between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.session.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// fail prints err for the user and returns it unchanged.
func (a *App) fail(err error) error {
	fmt.Fprintf(a.out, "Error: %s\n", err.Error())
	a.logger.Debug(context.Background(), "command failed", "error", err)
	return err
}
