package models

import (
	"strings"

	"github.com/dmitrijs2005/userdesk/internal/common"
)

// Item is a record of the /api/item collection.
type Item struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status,omitempty"`
}

type ItemDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status,omitempty"`
}

func NewItemDraft() ItemDraft {
	return ItemDraft{}
}

func ItemDraftFrom(i Item) ItemDraft {
	return ItemDraft{Name: i.Name, Description: i.Description, Status: i.Status}
}

func (d ItemDraft) Validate(bool) error {
	if strings.TrimSpace(d.Name) == "" {
		return common.NewValidationError("name", "Name is required")
	}
	if d.Status != "" && !d.Status.Valid() {
		return common.NewValidationError("status", "Status must be ACTIVE or INACTIVE")
	}
	return nil
}
