package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/favorites"
	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/repositories"
	"github.com/desertthunder/chalet/internal/server"
	"github.com/desertthunder/chalet/internal/services"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/desertthunder/chalet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// sessionHolder is implemented by backends that carry the session themselves (the cookie jar of [services.BackendService]).
type sessionHolder interface {
	SetSessionToken(token string)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	backend  services.Backend
	google   server.Provider
	db       *sql.DB
	sessions *repositories.SessionRepository
	session  *models.Session
	store    *favorites.LocalStore
	signal   favorites.Signal
	engine   *tasks.Engine
	logger   *log.Logger
	output   io.Writer
	input    io.Reader
	open     func(url string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Backend services.Backend
	Google  server.Provider
	DB      *sql.DB
	Store   *favorites.LocalStore
	Signal  favorites.Signal
	Logger  *log.Logger
	Output  io.Writer
	Input   io.Reader
	Open    func(url string) error
}

// NewRunner creates a new Runner with the provided configuration.
//
// When a database is given, the most recent stored session is restored into the backend.
// Without a store, favorites live in memory for the lifetime of the process.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}
	if opts.Store == nil {
		opts.Store = favorites.NewLocalStore(favorites.NewMemoryCache(), opts.Logger)
	}

	r := &Runner{
		config:  opts.Config,
		backend: opts.Backend,
		google:  opts.Google,
		db:      opts.DB,
		store:   opts.Store,
		signal:  opts.Signal,
		logger:  opts.Logger,
		output:  opts.Output,
		input:   opts.Input,
		open:    opts.Open,
	}

	if opts.Backend != nil {
		r.engine = tasks.NewEngine(opts.Backend)
	}
	if opts.DB != nil {
		r.sessions = repositories.NewSessionRepository(opts.DB)
		r.restoreSession()
	}
	return r
}

// SetLogger replaces the logger, e.g. to keep log output off the terminal while the TUI runs.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the local database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, chaletsCommand, favoritesCommand, contactCommand, dashboardCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// restoreSession loads the most recent active session and installs its token.
func (r *Runner) restoreSession() {
	session, err := r.sessions.Current()
	if err != nil {
		if !errors.Is(err, shared.ErrSessionNotFound) {
			r.logger.Debug("failed to load session", "error", err)
		}
		return
	}
	if !session.Authenticated() {
		r.logger.Debug("stored session expired", "provider", session.Provider())
		return
	}

	r.session = session
	if holder, ok := r.backend.(sessionHolder); ok {
		holder.SetSessionToken(session.Token())
	}
}

// saveSession records a successful login, replacing any previous session.
func (r *Runner) saveSession(result *services.AuthResult, provider string) error {
	session := services.NewSessionFromToken(result.Token, provider, result.User)
	r.session = session

	if r.sessions == nil {
		r.logger.Warn("local database unavailable, session will not be remembered")
		return nil
	}
	if _, err := r.sessions.DeleteAll(); err != nil {
		return fmt.Errorf("failed to replace session: %w", err)
	}
	if err := r.sessions.Create(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// clearSession forgets the local session.
func (r *Runner) clearSession() error {
	r.session = nil
	if holder, ok := r.backend.(sessionHolder); ok {
		holder.SetSessionToken("")
	}
	if r.sessions == nil {
		return nil
	}
	if _, err := r.sessions.DeleteAll(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (r *Runner) authenticated() bool {
	return r.session.Authenticated()
}

func (r *Runner) requireBackend() error {
	if r.backend == nil || r.engine == nil {
		return fmt.Errorf("%w: backend not configured", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) requireSession() error {
	if err := r.requireBackend(); err != nil {
		return err
	}
	if !r.authenticated() {
		return fmt.Errorf("%w: run `chalet auth login` first", shared.ErrNotAuthenticated)
	}
	return nil
}

// track starts a printer for engine progress. finish closes the channel and waits for the printer to drain.
// Quiet trackers only log, keeping machine-readable output clean.
func (r *Runner) track(quiet bool) (updates chan tasks.ProgressUpdate, finish func()) {
	updates = make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range updates {
			r.logger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
			if quiet {
				continue
			}
			switch update.Phase {
			case tasks.FetchChalets, tasks.FetchProfile, tasks.FetchStats, tasks.FetchFavorites:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.PrefetchDetails:
				r.writePlain("   %s\n", update.Message)
			case tasks.ExportChalets:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()
	return updates, func() {
		close(updates)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
