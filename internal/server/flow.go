package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/shared"
)

// DefaultFlowTimeout bounds how long [OAuthFlow.Run] waits for the browser callback.
const DefaultFlowTimeout = 2 * time.Minute

// Outcome is the terminal state of an OAuth flow.
type Outcome int

const (
	Success Outcome = iota
	Cancelled
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// FlowResult is exactly one of Success(Token), Cancelled, or Failed(Reason).
type FlowResult struct {
	Outcome Outcome
	Token   string
	Reason  string
	err     error
}

// Err returns nil on success, [shared.ErrOAuthCancelled] when cancelled, and the failure cause otherwise.
func (r FlowResult) Err() error {
	switch r.Outcome {
	case Success:
		return nil
	case Cancelled:
		return shared.ErrOAuthCancelled
	default:
		if r.err != nil {
			return r.err
		}
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, r.Reason)
	}
}

func succeeded(token string) FlowResult { return FlowResult{Outcome: Success, Token: token} }

func cancelled(reason string) FlowResult { return FlowResult{Outcome: Cancelled, Reason: reason} }

func failed(err error) FlowResult { return FlowResult{Outcome: Failed, Reason: err.Error(), err: err} }

// Provider is the identity provider driven by [OAuthFlow].
type Provider interface {
	Exchanger
	AuthURL(state string) string
}

// FlowOpts configures an [OAuthFlow].
type FlowOpts struct {
	Addr         string        // Callback listen address, e.g. localhost:3000
	CallbackPath string        // Callback path (default: /callback)
	Timeout      time.Duration // Overall deadline (default: 2 minutes)
	Listener     net.Listener  // Optional pre-bound listener; Addr is ignored when set

	// Open launches the browser. Defaults to [shared.OpenBrowser].
	Open func(url string) error
	// Prompt shows the URL when Open fails.
	Prompt func(url string)
	Logger *log.Logger
}

// OAuthFlow runs a browser-based authorization code flow against a local callback server.
type OAuthFlow struct {
	provider Provider
	opts     FlowOpts
	logger   *log.Logger
}

// NewOAuthFlow creates an [OAuthFlow] for provider.
func NewOAuthFlow(provider Provider, opts FlowOpts) *OAuthFlow {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFlowTimeout
	}
	if opts.Open == nil {
		opts.Open = shared.OpenBrowser
	}
	if opts.Prompt == nil {
		opts.Prompt = func(string) {}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &OAuthFlow{provider: provider, opts: opts, logger: logger}
}

// Run starts the callback server, opens the consent page, and blocks until the flow resolves.
//
// The callback server is always shut down before Run returns. Cancelling ctx yields Cancelled,
// the flow deadline yields Failed wrapping [shared.ErrTimeout].
func (f *OAuthFlow) Run(ctx context.Context) FlowResult {
	state, err := shared.GenerateState()
	if err != nil {
		return failed(fmt.Errorf("failed to generate state token: %w", err))
	}

	ln := f.opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", f.opts.Addr)
		if err != nil {
			return failed(fmt.Errorf("%w: failed to start callback server: %v", shared.ErrAuthFailed, err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	handler := NewOAuthHandler(f.provider, state, f.opts.CallbackPath)
	router := NewBasicRouter()
	router.Use(Recover(f.logger), LogRequests(f.logger))
	router.Handler(handler)

	httpServer := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		f.logger.Info("starting OAuth callback server", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			f.logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	authURL := f.provider.AuthURL(state)
	if err := f.opts.Open(authURL); err != nil {
		f.logger.Warn("failed to open browser automatically", "error", err)
		f.opts.Prompt(authURL)
	}

	select {
	case res := <-handler.Result():
		switch err := res.Error(); {
		case err == nil && res.Token != "":
			return succeeded(res.Token)
		case err == nil:
			return failed(fmt.Errorf("%w: no token received", shared.ErrAuthFailed))
		case errors.Is(err, shared.ErrOAuthCancelled):
			return cancelled("consent denied")
		default:
			return failed(err)
		}
	case err := <-serverErrors:
		return failed(fmt.Errorf("%w: callback server error: %v", shared.ErrAuthFailed, err))
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return failed(fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, f.opts.Timeout))
		}
		return cancelled("interrupted")
	}
}
