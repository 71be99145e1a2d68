package resources

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/userdesk/internal/client/api"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

// ErrSuperseded is returned by Load when the page changed while the request
// was in flight. The response was discarded.
var ErrSuperseded = errors.New("load superseded by a newer page")

const (
	fallbackSubmitError = "Operation failed"
	fallbackDeleteError = "Delete failed"
	fallbackLoadError   = "Failed to load"
)

// Requester is the part of api.Client the controllers need.
type Requester interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
}

// State is a point-in-time copy of a controller's state for rendering.
type State[R any, D any] struct {
	Items      []R
	PageNumber int
	TotalPages int
	EditingID  string
	Draft      D
	LastError  string
	Busy       bool
}

// Creating reports whether a submit would create a new record.
func (s State[R, D]) Creating() bool {
	return s.EditingID == ""
}

// ListController drives one paginated collection.
//
// Loads are tagged with the page they were issued for; a response whose page
// is no longer the current one is dropped. Submit and Remove are exclusive:
// while one is in flight, mutations return common.ErrBusy without sending.
type ListController[R any, D any] struct {
	schema Schema[R, D]
	client Requester
	logger logging.Logger

	mu         sync.Mutex
	items      []R
	page       int
	target     int
	totalPages int
	editingID  string
	draft      D
	stash      *D
	lastError  string
	busy       bool
}

func NewListController[R any, D any](schema Schema[R, D], client Requester, logger logging.Logger) *ListController[R, D] {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &ListController[R, D]{
		schema:     schema,
		client:     client,
		logger:     logger.With("resource", schema.Name),
		items:      []R{},
		page:       1,
		target:     1,
		totalPages: 1,
		draft:      schema.NewDraft(),
	}
}

func (c *ListController[R, D]) State() State[R, D] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[R, D]{
		Items:      append([]R(nil), c.items...),
		PageNumber: c.page,
		TotalPages: c.totalPages,
		EditingID:  c.editingID,
		Draft:      c.draft,
		LastError:  c.lastError,
		Busy:       c.busy,
	}
}

// Load fetches page and makes it current once it arrives. On failure the
// previous items and page number stay visible and LastError is set.
func (c *ListController[R, D]) Load(ctx context.Context, page int) error {
	return c.load(ctx, page, true)
}

func (c *ListController[R, D]) load(ctx context.Context, page int, clamp bool) error {
	if page < 1 {
		page = 1
	}

	c.mu.Lock()
	c.target = page
	c.mu.Unlock()

	resp, err := c.client.Do(ctx, api.Request{
		Method: http.MethodGet,
		Path:   c.schema.Base,
		Query:  url.Values{"page": {strconv.Itoa(page)}},
	})
	if err == nil {
		err = resp.Err(fallbackLoadError)
	}

	var p models.Page[R]
	if err == nil {
		p, err = models.DecodePage[R](resp.Body)
		if err != nil {
			c.logger.Warn(ctx, "unreadable list response", "page", page, "error", err)
			err = &api.StatusError{Status: resp.Status, Message: fallbackLoadError}
		}
	}

	c.mu.Lock()
	if c.target != page {
		c.mu.Unlock()
		c.logger.Debug(ctx, "discarding stale page", "page", page)
		return ErrSuperseded
	}
	if err != nil {
		c.target = c.page
		c.lastError = api.UserMessage(err)
		c.mu.Unlock()
		c.logger.Warn(ctx, "load failed", "page", page, "error", err)
		return err
	}

	c.page = page
	c.items = p.Data
	c.totalPages = p.TotalPages
	c.lastError = ""
	outOfRange := page > p.TotalPages
	c.mu.Unlock()

	if outOfRange && clamp {
		return c.load(ctx, p.TotalPages, false)
	}
	return nil
}

// ChangePage moves by delta pages from the page being loaded, or the shown
// one when nothing is pending. Targets outside [1, TotalPages] are ignored
// without a request.
func (c *ListController[R, D]) ChangePage(ctx context.Context, delta int) error {
	c.mu.Lock()
	next := c.target + delta
	if delta == 0 || next < 1 || next > c.totalPages {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	return c.Load(ctx, next)
}

// Submit creates or updates the record described by the draft, then reloads
// the current page. A nil return means the write succeeded; a failed reload
// is reported through LastError.
func (c *ListController[R, D]) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return common.ErrBusy
	}
	editingID, draft := c.editingID, c.draft
	if err := c.schema.Validate(draft, editingID == ""); err != nil {
		c.lastError = err.Error()
		c.mu.Unlock()
		return err
	}
	c.busy = true
	c.lastError = ""
	c.mu.Unlock()

	req := api.Request{Method: http.MethodPost, Path: c.schema.Base, Body: draft}
	if editingID != "" {
		req.Method, req.Path = http.MethodPut, c.recordPath(editingID)
	}

	err := c.mutate(ctx, req, fallbackSubmitError)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.lastError = api.UserMessage(err)
		c.mu.Unlock()
		c.logger.Warn(ctx, "submit failed", "id", editingID, "error", err)
		return err
	}
	c.editingID = ""
	c.draft = c.schema.NewDraft()
	c.stash = nil
	page := c.page
	c.mu.Unlock()

	c.logger.Info(ctx, "record saved", "id", editingID)
	c.reload(ctx, page)
	return nil
}

// Remove deletes the record with the given id. Without confirmation nothing
// happens and common.ErrNotConfirmed is returned.
func (c *ListController[R, D]) Remove(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return common.ErrNotConfirmed
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return common.ErrBusy
	}
	c.busy = true
	c.lastError = ""
	c.mu.Unlock()

	err := c.mutate(ctx, api.Request{Method: http.MethodDelete, Path: c.recordPath(id)}, fallbackDeleteError)

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.lastError = api.UserMessage(err)
		c.mu.Unlock()
		c.logger.Warn(ctx, "delete failed", "id", id, "error", err)
		return err
	}
	if c.editingID == id {
		c.editingID = ""
		c.draft = c.schema.NewDraft()
		c.stash = nil
	}
	page := c.page
	c.mu.Unlock()

	c.logger.Info(ctx, "record deleted", "id", id)
	c.reload(ctx, page)
	return nil
}

// BeginEdit switches to update mode for r. Write-only fields are left empty.
func (c *ListController[R, D]) BeginEdit(r R) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	if c.editingID == "" {
		stash := c.draft
		c.stash = &stash
	}
	c.editingID = c.schema.ID(r)
	c.draft = c.schema.DraftFrom(r)
	return nil
}

// CancelEdit leaves update mode, restoring the draft that was in progress
// before BeginEdit, or the default draft.
func (c *ListController[R, D]) CancelEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	c.editingID = ""
	if c.stash != nil {
		c.draft = *c.stash
		c.stash = nil
	} else {
		c.draft = c.schema.NewDraft()
	}
	return nil
}

func (c *ListController[R, D]) Draft() D {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the draft. It is refused while a mutation is in flight.
func (c *ListController[R, D]) SetDraft(d D) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	c.draft = d
	return nil
}

// UpdateDraft applies fn to a copy of the draft and stores the result.
func (c *ListController[R, D]) UpdateDraft(fn func(*D)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return common.ErrBusy
	}
	d := c.draft
	fn(&d)
	c.draft = d
	return nil
}

// Find returns the record with id from the current page.
func (c *ListController[R, D]) Find(id string) (R, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.items {
		if c.schema.ID(r) == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

func (c *ListController[R, D]) mutate(ctx context.Context, req api.Request, fallback string) error {
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Err(fallback)
}

func (c *ListController[R, D]) reload(ctx context.Context, page int) {
	if err := c.Load(ctx, page); err != nil && !errors.Is(err, ErrSuperseded) {
		c.logger.Warn(ctx, "reload after write failed", "error", err)
	}
}

func (c *ListController[R, D]) recordPath(id string) string {
	return c.schema.Base + "/" + url.PathEscape(id)
}
