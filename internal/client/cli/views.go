package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/userdesk/internal/client/models"
	"github.com/dmitrijs2005/userdesk/internal/client/resources"
	"github.com/dmitrijs2005/userdesk/internal/common"
)

var errNotOnPage = errors.New("record is not on the current page")

// resourceView adapts a typed list controller to the REPL.
type resourceView interface {
	Name() string
	Page() (page, total int)
	Load(ctx context.Context, page int) error
	ChangePage(ctx context.Context, delta int) error
	Render(w io.Writer)
	// Add and Edit fill the draft from prompts; Save submits it.
	Add(r *bufio.Reader, w io.Writer) error
	Edit(id string, r *bufio.Reader, w io.Writer) error
	Save(ctx context.Context) error
	Cancel() error
	Delete(ctx context.Context, id string, confirmed bool) error
	LastError() string
}

// formFn prompts for every field of d. creating tells whether the draft
// is for a new record.
type formFn[D any] func(r *bufio.Reader, w io.Writer, d D, creating bool) (D, error)

type listView[R any, D any] struct {
	name   string
	ctl    *resources.ListController[R, D]
	header string
	row    func(R) string
	form   formFn[D]
}

func (v *listView[R, D]) Name() string { return v.name }

func (v *listView[R, D]) Page() (int, int) {
	st := v.ctl.State()
	return st.PageNumber, st.TotalPages
}

func (v *listView[R, D]) Load(ctx context.Context, page int) error {
	return v.ctl.Load(ctx, page)
}

func (v *listView[R, D]) ChangePage(ctx context.Context, delta int) error {
	return v.ctl.ChangePage(ctx, delta)
}

func (v *listView[R, D]) LastError() string {
	return v.ctl.State().LastError
}

func (v *listView[R, D]) Render(w io.Writer) {
	st := v.ctl.State()
	fmt.Fprintln(w, v.header)
	if len(st.Items) == 0 {
		fmt.Fprintf(w, "No %s found\n", v.name)
	}
	for _, r := range st.Items {
		fmt.Fprintln(w, v.row(r))
	}
	fmt.Fprintf(w, "Page %d of %d\n", st.PageNumber, st.TotalPages)
	if st.EditingID != "" {
		fmt.Fprintf(w, "Editing %s (save or cancel)\n", st.EditingID)
	}
	if st.LastError != "" {
		fmt.Fprintln(w, "Error:", st.LastError)
	}
}

func (v *listView[R, D]) Add(r *bufio.Reader, w io.Writer) error {
	if st := v.ctl.State(); !st.Creating() {
		if err := v.ctl.CancelEdit(); err != nil {
			return err
		}
	}
	d, err := v.form(r, w, v.ctl.Draft(), true)
	if err != nil {
		return err
	}
	return v.ctl.SetDraft(d)
}

func (v *listView[R, D]) Edit(id string, r *bufio.Reader, w io.Writer) error {
	rec, ok := v.ctl.Find(id)
	if !ok {
		return errNotOnPage
	}
	if err := v.ctl.BeginEdit(rec); err != nil {
		return err
	}
	d, err := v.form(r, w, v.ctl.Draft(), false)
	if err != nil {
		_ = v.ctl.CancelEdit()
		return err
	}
	return v.ctl.SetDraft(d)
}

func (v *listView[R, D]) Save(ctx context.Context) error {
	return v.ctl.Submit(ctx)
}

func (v *listView[R, D]) Cancel() error {
	return v.ctl.CancelEdit()
}

func (v *listView[R, D]) Delete(ctx context.Context, id string, confirmed bool) error {
	return v.ctl.Remove(ctx, id, confirmed)
}

func newUsersView(ctl *resources.ListController[models.User, models.UserDraft]) resourceView {
	return &listView[models.User, models.UserDraft]{
		name:   "users",
		ctl:    ctl,
		header: fmt.Sprintf("%-24s  %-16s  %-28s  %-24s  %s", "ID", "USERNAME", "EMAIL", "NAME", "STATUS"),
		row: func(u models.User) string {
			return fmt.Sprintf("%-24s  %-16s  %-28s  %-24s  %s", u.ID, u.Username, u.Email, u.FullName(), u.Status.Effective())
		},
		form: userForm,
	}
}

func newItemsView(ctl *resources.ListController[models.Item, models.ItemDraft]) resourceView {
	return &listView[models.Item, models.ItemDraft]{
		name:   "items",
		ctl:    ctl,
		header: fmt.Sprintf("%-24s  %-24s  %-8s  %s", "ID", "NAME", "STATUS", "DESCRIPTION"),
		row: func(i models.Item) string {
			return fmt.Sprintf("%-24s  %-24s  %-8s  %s", i.ID, i.Name, i.Status.Effective(), i.Description)
		},
		form: itemForm,
	}
}

// userForm never shows the password. When editing, a new one is only asked
// for if the user wants to change it.
func userForm(r *bufio.Reader, w io.Writer, d models.UserDraft, creating bool) (models.UserDraft, error) {
	var err error
	if d.Username, err = GetTextWithDefault(r, "Username", d.Username, w); err != nil {
		return d, err
	}
	if d.Email, err = GetTextWithDefault(r, "Email", d.Email, w); err != nil {
		return d, err
	}
	if creating || Confirm(r, "Change password?", w) {
		pw, err := getPassword(w)
		if err != nil {
			return d, err
		}
		d.Password = string(pw)
		common.WipeByteArray(pw)
	}
	if d.Firstname, err = GetTextWithDefault(r, "First name", d.Firstname, w); err != nil {
		return d, err
	}
	if d.Lastname, err = GetTextWithDefault(r, "Last name", d.Lastname, w); err != nil {
		return d, err
	}
	return d, nil
}

func itemForm(r *bufio.Reader, w io.Writer, d models.ItemDraft, _ bool) (models.ItemDraft, error) {
	var err error
	if d.Name, err = GetTextWithDefault(r, "Name", d.Name, w); err != nil {
		return d, err
	}
	if d.Description, err = GetTextWithDefault(r, "Description", d.Description, w); err != nil {
		return d, err
	}
	status, err := GetTextWithDefault(r, "Status (ACTIVE/INACTIVE)", string(d.Status.Effective()), w)
	if err != nil {
		return d, err
	}
	d.Status = models.Status(strings.ToUpper(status))
	return d, nil
}
