package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/chalet/internal/models"
	"github.com/desertthunder/chalet/internal/server"
	"github.com/desertthunder/chalet/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthStatusResult is the JSON shape of `auth status`.
type AuthStatusResult struct {
	Authenticated bool       `json:"authenticated"`
	Provider      string     `json:"provider,omitempty"`
	Email         string     `json:"email,omitempty"`
	Name          string     `json:"name,omitempty"`
	Role          string     `json:"role,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// AuthLogin signs in with email and password and stores the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}

	email := strings.TrimSpace(cmd.String("email"))
	password := cmd.String("password")
	if password == "" {
		r.writePlain("Password: ")
		line, err := readLine(r.input)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = line
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", shared.ErrMissingArgument)
	}

	r.logger.Info("signing in", "email", email)

	result, err := r.backend.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "invalid credentials"
		}
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, msg)
	}

	if err := r.saveSession(result, "password"); err != nil {
		return err
	}

	r.logger.Info("authentication successful", "email", email)
	return r.writePlain("✓ Signed in as %s\n", displayUser(r.session.User(), email))
}

// AuthGoogle runs the browser sign-in flow and exchanges the Google id_token for a backend session.
//
// A cancelled flow (consent denied or interrupted) is reported but is not an error.
func (r *Runner) AuthGoogle(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireBackend(); err != nil {
		return err
	}
	if r.google == nil {
		return fmt.Errorf("%w: set credentials.google.client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	flow := server.NewOAuthFlow(r.google, server.FlowOpts{
		Addr:         r.config.Server.Addr(),
		CallbackPath: callbackPath(r.config.Credentials.Google.RedirectURI),
		Timeout:      cmd.Duration("timeout"),
		Open:         r.open,
		Prompt: func(authURL string) {
			r.writePlain("Open this URL in your browser to continue:\n%s\n", authURL)
		},
		Logger: r.logger,
	})

	r.writePlain("Opening browser for Google sign-in...\n")
	res := flow.Run(ctx)

	switch res.Outcome {
	case server.Cancelled:
		r.logger.Info("google sign-in cancelled", "reason", res.Reason)
		return r.writePlain("✗ Sign-in cancelled (%s)\n", res.Reason)
	case server.Failed:
		return res.Err()
	}

	result, err := r.backend.LoginWithGoogle(ctx, res.Token)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if !result.Success {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, result.Message)
	}

	if err := r.saveSession(result, "google"); err != nil {
		return err
	}
	return r.writePlain("✓ Signed in as %s\n", displayUser(r.session.User(), "Google account"))
}

// AuthLogout ends the backend session and forgets the local one.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.backend != nil && r.authenticated() {
		if err := r.backend.Logout(ctx); err != nil {
			r.logger.Warn("backend logout failed", "error", err)
		}
	}
	if err := r.clearSession(); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus reports the stored session, refreshing the identity from the backend when reachable.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := AuthStatusResult{}

	if r.authenticated() {
		user := r.session.User()
		if r.backend != nil {
			me, err := r.backend.Me(ctx)
			switch {
			case err == nil:
				user = *me
			case errors.Is(err, shared.ErrNotAuthenticated):
				r.logger.Info("stored session rejected by backend")
				if err := r.clearSession(); err != nil {
					return err
				}
			default:
				r.logger.Warn("could not refresh profile", "error", err)
			}
		}

		if r.session != nil {
			status = AuthStatusResult{
				Authenticated: true,
				Provider:      r.session.Provider(),
				Email:         user.Email,
				Name:          user.Name,
				Role:          string(user.Role),
				ExpiresAt:     r.session.ExpiresAt(),
			}
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !status.Authenticated {
		return r.writePlain("✗ Not signed in\n")
	}

	r.writePlain("✓ Signed in as %s\n", displayUser(models.User{Name: status.Name, Email: status.Email}, "unknown user"))
	r.writePlain("Provider: %s\n", status.Provider)
	r.writePlain("Role: %s\n", status.Role)
	if status.ExpiresAt != nil {
		r.writePlain("Expires: %s\n", status.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

// callbackPath returns the path of the configured redirect URI.
func callbackPath(redirectURI string) string {
	u, err := url.Parse(redirectURI)
	if err != nil || u.Path == "" {
		return "/callback"
	}
	return u.Path
}

func displayUser(u models.User, fallback string) string {
	switch {
	case u.Name != "" && u.Email != "":
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	case u.Email != "":
		return u.Email
	case u.Name != "":
		return u.Name
	default:
		return fallback
	}
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
