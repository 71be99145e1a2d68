// Package models defines the records and draft forms exchanged with the
// user-management API.
package models

import "encoding/json"

// Status is the lifecycle flag carried by every resource record.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Effective returns the status as displayed; records without one are active.
func (s Status) Effective() Status {
	if s == "" {
		return StatusActive
	}
	return s
}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive:
		return true
	}
	return false
}

// Page is one bounded slice of a resource list as returned by the list
// endpoint: {"data": [...], "totalPages": N}.
type Page[R any] struct {
	Data       []R `json:"data"`
	TotalPages int `json:"totalPages"`
}

// DecodePage parses a list response. A bare JSON array is accepted as a
// single page. The returned page always has TotalPages >= 1 and a non-nil Data.
func DecodePage[R any](body []byte) (Page[R], error) {
	var p Page[R]

	var items []R
	if err := json.Unmarshal(body, &items); err == nil {
		p.Data = items
	} else if err := json.Unmarshal(body, &p); err != nil {
		return Page[R]{}, err
	}

	if p.Data == nil {
		p.Data = []R{}
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
	return p, nil
}
