package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/userdesk/internal/client/profile"
	"github.com/dmitrijs2005/userdesk/internal/common"
)

const notSet = "Not set"

func (a *App) Profile(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.profile.Fetch(ctx); err != nil {
		a.println("Error:", a.profile.State().FetchError)
		return err
	}
	a.renderProfile()
	return nil
}

// Upload sets the profile image from a local file.
func (a *App) Upload(ctx context.Context, path string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	f, err := profile.OpenImageFile(path)
	if err != nil {
		a.println("Error:", err)
		return err
	}
	a.profile.Select(f)

	err = a.profile.Upload(ctx, f)
	if errors.Is(err, common.ErrBusy) {
		return a.report(err)
	}
	a.renderImageResult()
	return err
}

func (a *App) RemoveImage(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	confirmed := Confirm(a.reader, "Are you sure you want to delete your profile image?", a.out)
	err := a.profile.DeleteImage(ctx, confirmed)
	if errors.Is(err, common.ErrNotConfirmed) || errors.Is(err, common.ErrBusy) {
		return a.report(err)
	}
	a.renderImageResult()
	return err
}

func (a *App) renderImageResult() {
	st := a.profile.State()
	switch {
	case st.UploadError != "":
		a.println("Error:", st.UploadError)
	case st.Notice != "":
		a.println(st.Notice)
		a.renderProfile()
	}
}

func (a *App) renderProfile() {
	st := a.profile.State()
	p := st.Profile
	if p == nil {
		a.println("No profile data available")
		return
	}
	a.printf("ID:          %s\n", p.ID)
	a.printf("Email:       %s\n", p.Email)
	a.printf("First Name:  %s\n", orNotSet(p.Firstname))
	a.printf("Last Name:   %s\n", orNotSet(p.Lastname))
	if url := a.profile.ImageURL(); url != "" {
		a.printf("Image:       %s\n", url)
	} else {
		a.println("Image:       No profile image")
	}
}

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}
