package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/shared"
)

type fakeProvider struct {
	token string
	err   error

	mu    sync.Mutex
	codes []string
}

func (p *fakeProvider) AuthURL(state string) string {
	return "https://accounts.test/auth?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(ctx context.Context, code string) (string, error) {
	p.mu.Lock()
	p.codes = append(p.codes, code)
	p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	return p.token, nil
}

func stateFrom(t *testing.T, authURL string) string {
	t.Helper()
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("bad auth url %q: %v", authURL, err)
	}
	return u.Query().Get("state")
}

func TestRouter(t *testing.T) {
	t.Run("Handle enforces method", func(t *testing.T) {
		router := NewBasicRouter()
		router.HandleFunc(http.MethodPost, "/submit", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/submit", nil))
		if rec.Code != http.StatusCreated {
			t.Errorf("expected 201, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mark("first"), mark("second"))
		router.HandleFunc(http.MethodGet, "/", func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("Handler registers routes", func(t *testing.T) {
		router := NewBasicRouter()
		h := NewOAuthHandler(&fakeProvider{token: "id"}, "s", "/oauth/google")
		router.Handler(h)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/oauth/google?state=s&code=c", nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404 for unregistered path, got %d", rec.Code)
		}
	})

	t.Run("Recover", func(t *testing.T) {
		var buf bytes.Buffer
		router := NewBasicRouter()
		router.Use(Recover(log.New(&buf)))
		router.HandleFunc(http.MethodGet, "/boom", func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "handler panic") {
			t.Errorf("expected panic to be logged, got %q", buf.String())
		}
	})

	t.Run("LogRequests", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)
		logger.SetLevel(log.DebugLevel)

		router := NewBasicRouter()
		router.Use(LogRequests(logger))
		router.HandleFunc(http.MethodGet, "/teapot", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))
		if !strings.Contains(buf.String(), "status=418") {
			t.Errorf("expected status in log, got %q", buf.String())
		}
	})
}

func TestOAuthHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		provider := &fakeProvider{token: "id-token"}
		h := NewOAuthHandler(provider, "state123", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state123&code=abc", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Signed in") {
			t.Errorf("expected success page")
		}

		res := <-h.Result()
		if res.Error() != nil || res.Token != "id-token" {
			t.Errorf("unexpected result %+v", res)
		}
		if len(provider.codes) != 1 || provider.codes[0] != "abc" {
			t.Errorf("expected code abc to be exchanged, got %v", provider.codes)
		}
		if routes := h.Routes(); len(routes) != 1 || routes[0] != "/callback" {
			t.Errorf("unexpected routes %v", routes)
		}
	})

	t.Run("invalid state", func(t *testing.T) {
		h := NewOAuthHandler(&fakeProvider{token: "id"}, "expected", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=abc", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		res := <-h.Result()
		if !errors.Is(res.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Error())
		}
	})

	t.Run("access denied", func(t *testing.T) {
		h := NewOAuthHandler(&fakeProvider{}, "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		res := <-h.Result()
		if !errors.Is(res.Error(), shared.ErrOAuthCancelled) {
			t.Errorf("expected ErrOAuthCancelled, got %v", res.Error())
		}
	})

	t.Run("provider error", func(t *testing.T) {
		h := NewOAuthHandler(&fakeProvider{}, "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=server_error&error_description=oops", nil))

		res := <-h.Result()
		if !errors.Is(res.Error(), shared.ErrAuthFailed) || !strings.Contains(res.Error().Error(), "oops") {
			t.Errorf("unexpected error %v", res.Error())
		}
	})

	t.Run("exchange failure", func(t *testing.T) {
		h := NewOAuthHandler(&fakeProvider{err: shared.ErrAuthFailed}, "s", "")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=abc", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		res := <-h.Result()
		if !errors.Is(res.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", res.Error())
		}
	})

	t.Run("second callback rejected", func(t *testing.T) {
		provider := &fakeProvider{token: "id"}
		h := NewOAuthHandler(provider, "s", "")

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=one", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=two", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
		if len(provider.codes) != 1 {
			t.Errorf("expected a single exchange, got %v", provider.codes)
		}

		count := 0
		for range h.Result() {
			count++
		}
		if count != 1 {
			t.Errorf("expected exactly one result, got %d", count)
		}
	})
}

func TestOAuthFlow(t *testing.T) {
	listen := func(t *testing.T) net.Listener {
		t.Helper()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			t.Fatalf("listen: %v", err)
		}
		return ln
	}

	// visit simulates the browser following the redirect back to the callback server.
	visit := func(t *testing.T, ln net.Listener, query func(state string) string) func(string) error {
		return func(authURL string) error {
			state := stateFrom(t, authURL)
			target := "http://" + ln.Addr().String() + "/callback?" + query(state)
			go func() {
				resp, err := http.Get(target)
				if err == nil {
					io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
			}()
			return nil
		}
	}

	t.Run("Success", func(t *testing.T) {
		ln := listen(t)
		flow := NewOAuthFlow(&fakeProvider{token: "google-id-token"}, FlowOpts{
			Listener: ln,
			Timeout:  5 * time.Second,
			Open: visit(t, ln, func(state string) string {
				return "state=" + url.QueryEscape(state) + "&code=abc"
			}),
		})

		res := flow.Run(context.Background())
		if res.Outcome != Success || res.Token != "google-id-token" {
			t.Fatalf("expected success, got %+v", res)
		}
		if res.Err() != nil {
			t.Errorf("expected nil error, got %v", res.Err())
		}
	})

	t.Run("Cancelled by consent screen", func(t *testing.T) {
		ln := listen(t)
		flow := NewOAuthFlow(&fakeProvider{}, FlowOpts{
			Listener: ln,
			Timeout:  5 * time.Second,
			Open: visit(t, ln, func(state string) string {
				return "state=" + url.QueryEscape(state) + "&error=access_denied"
			}),
		})

		res := flow.Run(context.Background())
		if res.Outcome != Cancelled {
			t.Fatalf("expected cancelled, got %+v", res)
		}
		if !errors.Is(res.Err(), shared.ErrOAuthCancelled) {
			t.Errorf("expected ErrOAuthCancelled, got %v", res.Err())
		}
	})

	t.Run("Cancelled by context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		flow := NewOAuthFlow(&fakeProvider{}, FlowOpts{
			Listener: listen(t),
			Open: func(string) error {
				cancel()
				return nil
			},
		})

		res := flow.Run(ctx)
		if res.Outcome != Cancelled {
			t.Errorf("expected cancelled, got %+v", res)
		}
	})

	t.Run("Failed on state mismatch", func(t *testing.T) {
		ln := listen(t)
		flow := NewOAuthFlow(&fakeProvider{token: "x"}, FlowOpts{
			Listener: ln,
			Timeout:  5 * time.Second,
			Open: visit(t, ln, func(string) string {
				return "state=forged&code=abc"
			}),
		})

		res := flow.Run(context.Background())
		if res.Outcome != Failed || !errors.Is(res.Err(), shared.ErrAuthFailed) {
			t.Errorf("expected auth failure, got %+v", res)
		}
		if res.Reason == "" {
			t.Error("expected a failure reason")
		}
	})

	t.Run("Failed on timeout", func(t *testing.T) {
		var prompted string
		flow := NewOAuthFlow(&fakeProvider{}, FlowOpts{
			Listener: listen(t),
			Timeout:  50 * time.Millisecond,
			Open:     func(string) error { return errors.New("no browser") },
			Prompt:   func(u string) { prompted = u },
		})

		res := flow.Run(context.Background())
		if res.Outcome != Failed || !errors.Is(res.Err(), shared.ErrTimeout) {
			t.Errorf("expected timeout failure, got %+v", res)
		}
		if !strings.HasPrefix(prompted, "https://accounts.test/auth?state=") {
			t.Errorf("expected auth URL to be prompted, got %q", prompted)
		}
	})

	t.Run("Failed to listen", func(t *testing.T) {
		ln := listen(t)
		defer ln.Close()

		flow := NewOAuthFlow(&fakeProvider{}, FlowOpts{Addr: ln.Addr().String()})
		res := flow.Run(context.Background())
		if res.Outcome != Failed || !errors.Is(res.Err(), shared.ErrAuthFailed) {
			t.Errorf("expected listen failure, got %+v", res)
		}
	})

	t.Run("Outcome strings", func(t *testing.T) {
		for o, want := range map[Outcome]string{Success: "success", Cancelled: "cancelled", Failed: "failed", Outcome(9): "unknown"} {
			if o.String() != want {
				t.Errorf("%d: expected %s, got %s", o, want, o.String())
			}
		}
	})
}
