// Package resources implements the list controller shared by every
// management view: fetch a page, edit a draft, create, update, delete,
// then reload.
package resources

import (
	"github.com/dmitrijs2005/userdesk/internal/client/models"
)

// Schema describes one CRUD collection: where it lives and how its records
// map to drafts.
type Schema[R any, D any] struct {
	// Name is a human label used in logs, e.g. "user".
	Name string
	// Base is the collection path, e.g. "/api/user".
	Base string

	ID        func(R) string
	NewDraft  func() D
	DraftFrom func(R) D
	// Validate reports a *common.ValidationError for a draft that must not
	// be sent. creating is true when no record is being edited.
	Validate func(d D, creating bool) error
}

func Users() Schema[models.User, models.UserDraft] {
	return Schema[models.User, models.UserDraft]{
		Name:      "user",
		Base:      "/api/user",
		ID:        func(u models.User) string { return u.ID },
		NewDraft:  models.NewUserDraft,
		DraftFrom: models.UserDraftFrom,
		Validate:  models.UserDraft.Validate,
	}
}

func Items() Schema[models.Item, models.ItemDraft] {
	return Schema[models.Item, models.ItemDraft]{
		Name:      "item",
		Base:      "/api/item",
		ID:        func(i models.Item) string { return i.ID },
		NewDraft:  models.NewItemDraft,
		DraftFrom: models.ItemDraftFrom,
		Validate:  models.ItemDraft.Validate,
	}
}
