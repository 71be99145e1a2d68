// Package profile drives the signed-in user's profile view: fetching the
// profile and uploading or deleting its image.
package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/userdesk/internal/client/api"
	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

const (
	profilePath = "/api/user/profile"
	imagePath   = "/api/user/profile/image"
	imageField  = "file"
)

const (
	MsgUploadFailed     = "Failed to update image"
	MsgUploadTransport  = "Error uploading image. Please try again."
	MsgDeleteFailed     = "Failed to delete image"
	MsgDeleteTransport  = "Error deleting image. Please try again."
	MsgUploadSucceeded  = "Image updated successfully!"
	MsgDeleteSucceeded  = "Image deleted successfully!"
	msgProfileHTTPError = "HTTP error! status: %d"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseRejected   Phase = "rejected"
	PhaseUploading  Phase = "uploading"
	PhaseDeleting   Phase = "deleting"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Requester is the part of api.Client the controller needs.
type Requester interface {
	Do(ctx context.Context, req api.Request) (*api.Response, error)
	URL(path string) string
}

// State is a copy of the controller state for rendering. Phase is the
// current step; Outcome is how the last upload or delete ended.
type State struct {
	Profile     *models.Profile
	Selected    *ImageFile
	Phase       Phase
	Outcome     Phase
	FetchError  string
	UploadError string
	Notice      string
}

// Busy reports whether an upload or delete is in flight.
func (s State) Busy() bool {
	return s.Phase == PhaseUploading || s.Phase == PhaseDeleting
}

// Controller is safe for concurrent use. Only one upload or delete runs at a
// time; others return common.ErrBusy.
type Controller struct {
	client Requester
	logger logging.Logger

	mu          sync.Mutex
	profile     *models.Profile
	selected    *ImageFile
	phase       Phase
	outcome     Phase
	fetchError  string
	uploadError string
	notice      string
}

func NewController(client Requester, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Controller{client: client, logger: logger.With("view", "profile"), phase: PhaseIdle}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	var p *models.Profile
	if c.profile != nil {
		cp := *c.profile
		p = &cp
	}
	return State{
		Profile:     p,
		Selected:    c.selected,
		Phase:       c.phase,
		Outcome:     c.outcome,
		FetchError:  c.fetchError,
		UploadError: c.uploadError,
		Notice:      c.notice,
	}
}

// ImageURL is the absolute URL of the current profile image, or "".
func (c *Controller) ImageURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil || !c.profile.HasImage() {
		return ""
	}
	return c.client.URL(c.profile.ProfileImage)
}

// Fetch loads the profile. A 401 has already logged the session out by the
// time it reaches here; the profile is dropped.
func (c *Controller) Fetch(ctx context.Context) error {
	resp, err := c.client.Do(ctx, api.Request{Method: http.MethodGet, Path: profilePath})

	var p models.Profile
	if err == nil {
		if !resp.OK() {
			err = &api.StatusError{Status: resp.Status, Message: fmt.Sprintf(msgProfileHTTPError, resp.Status)}
		} else if derr := resp.Decode(&p); derr != nil {
			err = fmt.Errorf("decode profile: %w", derr)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			c.profile = nil
		}
		c.fetchError = api.UserMessage(err)
		c.logger.Warn(ctx, "fetch profile failed", "error", err)
		return err
	}
	c.profile = &p
	c.fetchError = ""
	return nil
}

// Select records the file chosen by the user without validating it.
func (c *Controller) Select(f *ImageFile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = f
}

// Upload validates f locally and, if it passes, posts it as multipart field
// "file". On success the selection is cleared and the profile refetched.
// On failure the current image reference is left as it was.
func (c *Controller) Upload(ctx context.Context, f *ImageFile) error {
	c.mu.Lock()
	if c.busyLocked() {
		c.mu.Unlock()
		return common.ErrBusy
	}
	c.selected = f
	c.phase = PhaseValidating
	c.notice = ""
	if err := f.Validate(); err != nil {
		c.uploadError = err.Error()
		c.finishLocked(PhaseRejected)
		c.mu.Unlock()
		c.logger.Info(ctx, "upload rejected", "reason", err)
		return err
	}
	c.phase = PhaseUploading
	c.uploadError = ""
	c.mu.Unlock()

	err := c.sendImage(ctx, f)
	return c.complete(ctx, err, MsgUploadSucceeded, MsgUploadFailed, MsgUploadTransport, true)
}

// DeleteImage removes the profile image. Without confirmation nothing
// happens and common.ErrNotConfirmed is returned.
func (c *Controller) DeleteImage(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return common.ErrNotConfirmed
	}

	c.mu.Lock()
	if c.busyLocked() {
		c.mu.Unlock()
		return common.ErrBusy
	}
	c.phase = PhaseDeleting
	c.uploadError = ""
	c.notice = ""
	c.mu.Unlock()

	resp, err := c.client.Do(ctx, api.Request{Method: http.MethodDelete, Path: imagePath})
	if err == nil {
		err = resp.Err(MsgDeleteFailed)
	}
	return c.complete(ctx, err, MsgDeleteSucceeded, MsgDeleteFailed, MsgDeleteTransport, false)
}

func (c *Controller) sendImage(ctx context.Context, f *ImageFile) error {
	r, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer r.Close()

	resp, err := c.client.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   imagePath,
		File:   &api.FilePart{Field: imageField, FileName: f.Name, ContentType: f.ContentType, Reader: r},
	})
	if err != nil {
		return err
	}
	return resp.Err(MsgUploadFailed)
}

// complete records the outcome of an upload or delete and refetches the
// profile after a success.
func (c *Controller) complete(ctx context.Context, err error, okMsg, failMsg, transportMsg string, clearSelection bool) error {
	c.mu.Lock()
	if err != nil {
		var se *api.StatusError
		switch {
		case errors.As(err, &se):
			c.uploadError = se.Message
		case errors.Is(err, api.ErrUnauthorized):
			c.uploadError = api.MsgSessionExpired
		case errors.Is(err, api.ErrTransport):
			c.uploadError = transportMsg
		default:
			c.uploadError = failMsg
		}
		c.finishLocked(PhaseFailed)
		c.mu.Unlock()
		c.logger.Warn(ctx, "image change failed", "error", err)
		return err
	}

	if clearSelection {
		c.selected = nil
	}
	c.notice = okMsg
	c.finishLocked(PhaseSucceeded)
	c.mu.Unlock()

	c.logger.Info(ctx, "image changed", "notice", okMsg)
	if ferr := c.Fetch(ctx); ferr != nil {
		c.logger.Warn(ctx, "refetch after image change failed", "error", ferr)
	}
	return nil
}

func (c *Controller) finishLocked(outcome Phase) {
	c.outcome = outcome
	c.phase = PhaseIdle
}

func (c *Controller) busyLocked() bool {
	return c.phase == PhaseUploading || c.phase == PhaseDeleting
}
