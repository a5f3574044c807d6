package favorites

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chalet/internal/services"
)

// Backend is the subset of the marketplace API the like protocol needs.
type Backend interface {
	AddFavorite(ctx context.Context, chaletID string) (*services.FavoriteResult, error)
	RemoveFavorite(ctx context.Context, chaletID string) (*services.FavoriteResult, error)
	CheckFavorite(ctx context.Context, chaletID string) (*services.FavoriteStatus, error)
}

// Phase is the controller's request phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
)

func (p Phase) String() string {
	if p == PhasePending {
		return "pending"
	}
	return "idle"
}

// Result is the outcome of one [Controller.Toggle].
type Result int

const (
	// ResultIgnored: a request was already pending or the view was closed.
	ResultIgnored Result = iota
	// ResultLoginRequired: not authenticated; nothing was mutated.
	ResultLoginRequired
	// ResultConfirmed: the backend accepted the change.
	ResultConfirmed
	// ResultRolledBack: the backend rejected the change or could not be reached; the view was reverted.
	ResultRolledBack
	// ResultDetached: the view closed before the backend answered; nothing was applied.
	ResultDetached
)

func (r Result) String() string {
	switch r {
	case ResultLoginRequired:
		return "login required"
	case ResultConfirmed:
		return "confirmed"
	case ResultRolledBack:
		return "rolled back"
	case ResultDetached:
		return "detached"
	default:
		return "ignored"
	}
}

// ViewState is the like state rendered by one mounted view.
type ViewState struct {
	IsLiked       bool
	LikeCount     int
	IsLikeLoading bool
	LoginRequired bool
	Phase         Phase
	Last          Result
}

// ControllerOpts configures a [Controller].
type ControllerOpts struct {
	ChaletID  string
	LikeCount int // as reported by the backend when the view loaded
	Store     Store
	Backend   Backend

	// IsAuthenticated reports whether a backend session is present. Nil means never authenticated.
	IsAuthenticated func() bool
	// OnChange, when set, is called with the new state after every change. It must not call back into the controller synchronously.
	OnChange func(ViewState)
	Logger   *log.Logger
}

// Controller owns the like state of one mounted detail view.
//
// It subscribes to the store on construction and must be released with [Controller.Close] when the view unmounts.
type Controller struct {
	id       string
	store    Store
	backend  Backend
	authed   func() bool
	onChange func(ViewState)
	logger   *log.Logger

	unsubscribe func()
	closeOnce   sync.Once

	mu        sync.Mutex
	state     ViewState
	closed    bool
	reconcile *time.Timer
	// gen increments whenever the liked state is changed locally; reconciliation answers
	// requested under an older generation are discarded.
	gen uint64
}

// NewController mounts a view for opts.ChaletID. IsLiked is seeded from the store's set.
func NewController(ctx context.Context, opts ControllerOpts) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	authed := opts.IsAuthenticated
	if authed == nil {
		authed = func() bool { return false }
	}

	c := &Controller{
		id:       opts.ChaletID,
		store:    opts.Store,
		backend:  opts.Backend,
		authed:   authed,
		onChange: opts.OnChange,
		logger:   logger.With("chalet", opts.ChaletID),
		state: ViewState{
			IsLiked:   opts.Store.Read(ctx).Has(opts.ChaletID),
			LikeCount: opts.LikeCount,
		},
	}
	c.unsubscribe = opts.Store.Subscribe(c.handle)
	return c
}

// ChaletID returns the id of the chalet this controller tracks.
func (c *Controller) ChaletID() string { return c.id }

// State returns a snapshot of the view state.
func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Closed reports whether the view has been unmounted.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// DismissLogin clears the login-required prompt.
func (c *Controller) DismissLogin() {
	c.mu.Lock()
	c.state.LoginRequired = false
	state := c.state
	c.mu.Unlock()
	c.changed(state)
}

// Toggle flips the liked state optimistically and asks the backend to confirm.
//
// The returned channel receives exactly one [Result]. In-flight requests are not cancelled by
// [Controller.Close]; their late completion yields [ResultDetached].
func (c *Controller) Toggle(ctx context.Context) <-chan Result {
	done := make(chan Result, 1)
	authed := c.authed()

	c.mu.Lock()
	if c.closed || c.state.IsLikeLoading {
		closed := c.closed
		c.mu.Unlock()
		c.logger.Debug("toggle ignored", "closed", closed)
		done <- ResultIgnored
		return done
	}

	if !authed {
		c.state.LoginRequired = true
		c.state.Last = ResultLoginRequired
		state := c.state
		c.mu.Unlock()
		c.changed(state)
		done <- ResultLoginRequired
		return done
	}

	liked := !c.state.IsLiked
	c.gen++
	c.state.IsLiked = liked
	if liked {
		c.state.LikeCount++
	} else {
		c.state.LikeCount--
	}
	c.state.IsLikeLoading = true
	c.state.LoginRequired = false
	c.state.Phase = PhasePending
	state := c.state
	c.mu.Unlock()
	c.changed(state)

	set := c.store.Read(ctx)
	set.Apply(c.id, liked)
	if err := c.store.Write(ctx, set); err != nil {
		c.logger.Debug("favorite cache write failed", "err", err)
	}
	c.store.Publish(Event{ChaletID: c.id, IsLiked: liked})

	go func() {
		var (
			res *services.FavoriteResult
			err error
		)
		if liked {
			res, err = c.backend.AddFavorite(ctx, c.id)
		} else {
			res, err = c.backend.RemoveFavorite(ctx, c.id)
		}
		done <- c.settle(liked, res, err)
	}()

	return done
}

// settle applies the backend's answer. A rollback restores the view only.
func (c *Controller) settle(liked bool, res *services.FavoriteResult, err error) Result {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("late favorite completion for closed view")
		return ResultDetached
	}

	c.gen++
	result := ResultConfirmed
	if err != nil || res == nil || !res.Success {
		result = ResultRolledBack
		c.state.IsLiked = !liked
		if liked {
			c.state.LikeCount--
		} else {
			c.state.LikeCount++
		}
		if res != nil && res.RequiresLogin {
			c.state.LoginRequired = true
		}
		c.logger.Debug("favorite rolled back", "liked", liked, "err", err)
	}

	c.state.IsLikeLoading = false
	c.state.Phase = PhaseIdle
	c.state.Last = result
	state := c.state
	c.mu.Unlock()

	c.changed(state)
	return result
}

// handle applies events for this chalet published by any view or by an external change.
func (c *Controller) handle(e Event) {
	if e.ChaletID != c.id {
		return
	}

	c.mu.Lock()
	if c.closed || c.state.IsLiked == e.IsLiked {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.state.IsLiked = e.IsLiked
	state := c.state
	c.mu.Unlock()

	c.changed(state)
}

func (c *Controller) changed(state ViewState) {
	if c.onChange != nil {
		c.onChange(state)
	}
}

// Close unmounts the view: it unsubscribes, stops a scheduled reconciliation, and discards late completions.
// It is safe to call more than once.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.unsubscribe()

		c.mu.Lock()
		c.closed = true
		if c.reconcile != nil {
			c.reconcile.Stop()
		}
		c.mu.Unlock()
	})
}
