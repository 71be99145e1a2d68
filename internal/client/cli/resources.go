package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/userdesk/internal/common"
)

var errNoView = errors.New("no collection selected")

// Use switches to the named collection and loads its first page.
func (a *App) Use(ctx context.Context, name string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	v, ok := a.views[name]
	if !ok {
		a.println("Unknown collection:", name)
		return fmt.Errorf("unknown collection %q", name)
	}
	a.current = v
	err := v.Load(ctx, 1)
	v.Render(a.out)
	return err
}

// List reloads the current page, or loads page when it is positive.
func (a *App) List(ctx context.Context, page int) error {
	v, err := a.view()
	if err != nil {
		return err
	}
	if page < 1 {
		page, _ = v.Page()
	}
	err = v.Load(ctx, page)
	v.Render(a.out)
	return err
}

func (a *App) ChangePage(ctx context.Context, delta int) error {
	v, err := a.view()
	if err != nil {
		return err
	}
	before, total := v.Page()
	if err := v.ChangePage(ctx, delta); err != nil {
		v.Render(a.out)
		return err
	}
	if after, _ := v.Page(); after == before {
		a.printf("Already on page %d of %d\n", before, total)
		return nil
	}
	v.Render(a.out)
	return nil
}

func (a *App) Add(ctx context.Context) error {
	v, err := a.view()
	if err != nil {
		return err
	}
	if err := v.Add(a.reader, a.out); err != nil {
		return a.report(err)
	}
	a.println("Type 'save' to create the record or 'cancel' to discard it")
	return nil
}

func (a *App) Edit(ctx context.Context, id string) error {
	v, err := a.view()
	if err != nil {
		return err
	}
	if err := v.Edit(id, a.reader, a.out); err != nil {
		return a.report(err)
	}
	a.println("Type 'save' to update the record or 'cancel' to discard changes")
	return nil
}

func (a *App) Save(ctx context.Context) error {
	v, err := a.view()
	if err != nil {
		return err
	}
	if err := v.Save(ctx); err != nil {
		return a.report(err)
	}
	a.println("Saved")
	v.Render(a.out)
	return nil
}

func (a *App) Cancel(ctx context.Context) error {
	v, err := a.view()
	if err != nil {
		return err
	}
	if err := v.Cancel(); err != nil {
		return a.report(err)
	}
	a.println("Discarded")
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	v, err := a.view()
	if err != nil {
		return err
	}
	confirmed := Confirm(a.reader, fmt.Sprintf("Delete %s?", id), a.out)
	if err := v.Delete(ctx, id, confirmed); err != nil {
		return a.report(err)
	}
	a.println("Deleted")
	v.Render(a.out)
	return nil
}

func (a *App) view() (resourceView, error) {
	if err := a.requireLogin(); err != nil {
		return nil, err
	}
	if a.current == nil {
		a.println("Choose a collection first: users or items")
		return nil, errNoView
	}
	return a.current, nil
}

// report prints err the way the user should see it. Controller failures
// already carry a user-facing message in LastError.
func (a *App) report(err error) error {
	switch {
	case errors.Is(err, common.ErrNotConfirmed):
		a.println("Cancelled")
	case errors.Is(err, common.ErrBusy):
		a.println("Please wait, a request is still running")
	case errors.Is(err, errNotOnPage):
		a.println("No such record on this page; use 'list' to see ids")
	case a.current != nil && a.current.LastError() != "":
		a.println("Error:", a.current.LastError())
	default:
		a.println("Error:", err)
	}
	return err
}
