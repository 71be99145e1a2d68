package profile

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/userdesk/internal/client/api"
	"github.com/dmitrijs2005/userdesk/internal/client/session"
	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake profile server ----

type profileServer struct {
	mu       sync.Mutex
	image    string
	requests []string

	uploadStatus int
	uploadBody   string
	deleteStatus int
	profile401   bool

	// block, when set, holds the upload until closed.
	block chan struct{}
	// entered is closed when an upload arrives.
	entered chan struct{}

	gotFile []byte
	gotType string
}

func (s *profileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == profilePath:
		if s.profile401 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		s.mu.Lock()
		img := s.image
		s.mu.Unlock()
		_, _ = io.WriteString(w, `{"_id":"u1","email":"a@b.com","firstname":"Ann","profileImage":"`+img+`"}`)

	case r.Method == http.MethodPost && r.URL.Path == imagePath:
		if s.entered != nil {
			close(s.entered)
		}
		if s.block != nil {
			<-s.block
		}
		f, hdr, err := r.FormFile(imageField)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"No file uploaded"}`)
			return
		}
		b, _ := io.ReadAll(f)
		_ = f.Close()
		s.mu.Lock()
		s.gotFile, s.gotType = b, hdr.Header.Get("Content-Type")
		s.mu.Unlock()

		if s.uploadStatus != 0 && s.uploadStatus != http.StatusOK {
			w.WriteHeader(s.uploadStatus)
			_, _ = io.WriteString(w, s.uploadBody)
			return
		}
		s.mu.Lock()
		s.image = "/uploads/" + hdr.Filename
		s.mu.Unlock()
		_, _ = io.WriteString(w, `{"message":"ok"}`)

	case r.Method == http.MethodDelete && r.URL.Path == imagePath:
		if s.deleteStatus != 0 && s.deleteStatus != http.StatusOK {
			w.WriteHeader(s.deleteStatus)
			_, _ = io.WriteString(w, `{}`)
			return
		}
		s.mu.Lock()
		s.image = ""
		s.mu.Unlock()
		_, _ = io.WriteString(w, `{"message":"deleted"}`)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *profileServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func newController(t *testing.T, s *profileServer, opts ...api.Option) (*Controller, *api.Client) {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	c, err := api.New(srv.URL, opts...)
	require.NoError(t, err)
	return NewController(c, nil), c
}

// ---- tests ----

func TestFetch_LoadsProfile(t *testing.T) {
	s := &profileServer{image: "/uploads/me.png"}
	c, client := newController(t, s)

	require.NoError(t, c.Fetch(context.Background()))

	st := c.State()
	require.NotNil(t, st.Profile)
	assert.Equal(t, "a@b.com", st.Profile.Email)
	assert.Equal(t, client.BaseURL()+"/uploads/me.png", c.ImageURL())
}

func TestFetch_ServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	client, err := api.New(srv.URL)
	require.NoError(t, err)
	c := NewController(client, nil)

	require.Error(t, c.Fetch(context.Background()))
	assert.Equal(t, "HTTP error! status: 502", c.State().FetchError)
}

func TestFetch_UnauthorizedForcesLogoutOnce(t *testing.T) {
	s := &profileServer{profile401: true}

	var invalidations atomic.Int32
	store := session.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, []byte(`{"isLoggedIn":true,"name":"","email":"a@b.com"}`)))

	srv := httptest.NewServer(s)
	defer srv.Close()
	client, err := api.New(srv.URL)
	require.NoError(t, err)
	mgr := session.NewManager(store, client, nil)
	mgr.Restore(ctx)
	client.SetInvalidator(invalidatorFunc(func(ctx context.Context) {
		invalidations.Add(1)
		mgr.Invalidate(ctx)
	}))
	c := NewController(client, nil)

	err = c.Fetch(ctx)
	require.ErrorIs(t, err, api.ErrUnauthorized)

	assert.EqualValues(t, 1, invalidations.Load())
	assert.Equal(t, session.LoggedOut(), mgr.Current())
	assert.Equal(t, []string{"GET " + profilePath}, s.Requests(), "no logout round trip")
	assert.Nil(t, c.State().Profile)
	assert.Equal(t, api.MsgSessionExpired, c.State().FetchError)
}

type invalidatorFunc func(ctx context.Context)

func (f invalidatorFunc) Invalidate(ctx context.Context) { f(ctx) }

func TestUpload_RejectedBeforeAnyRequest(t *testing.T) {
	s := &profileServer{image: "/uploads/old.png"}
	c, _ := newController(t, s)
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx))
	before := c.State().Profile

	err := c.Upload(ctx, memFile("cv.pdf", "application/pdf", 100))
	require.ErrorIs(t, err, common.ErrValidation)

	st := c.State()
	assert.Equal(t, MsgBadImageType, st.UploadError)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, PhaseRejected, st.Outcome)
	assert.Equal(t, before, st.Profile)
	assert.Equal(t, []string{"GET " + profilePath}, s.Requests())
}

func TestUpload_SuccessRefetchesAndClearsSelection(t *testing.T) {
	s := &profileServer{}
	c, client := newController(t, s)
	ctx := context.Background()
	f := memFile("me.png", "image/png", 4)
	c.Select(f)

	require.NoError(t, c.Upload(ctx, f))

	st := c.State()
	assert.Nil(t, st.Selected)
	assert.Empty(t, st.UploadError)
	assert.Equal(t, MsgUploadSucceeded, st.Notice)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, PhaseSucceeded, st.Outcome)
	require.NotNil(t, st.Profile)
	assert.Equal(t, "/uploads/me.png", st.Profile.ProfileImage)
	assert.Equal(t, client.URL("/uploads/me.png"), c.ImageURL())

	assert.Equal(t, []string{"POST " + imagePath, "GET " + profilePath}, s.Requests())
	assert.Equal(t, "data", string(s.gotFile))
	assert.Equal(t, "image/png", s.gotType)
}

func TestUpload_ServerMessageKeepsImage(t *testing.T) {
	s := &profileServer{image: "/uploads/old.png", uploadStatus: http.StatusBadRequest, uploadBody: `{"message":"Image too large"}`}
	c, _ := newController(t, s)
	ctx := context.Background()
	require.NoError(t, c.Fetch(ctx))
	f := memFile("me.png", "image/png", 4)

	require.Error(t, c.Upload(ctx, f))

	st := c.State()
	assert.Equal(t, "Image too large", st.UploadError)
	assert.Equal(t, PhaseFailed, st.Outcome)
	assert.Equal(t, PhaseIdle, st.Phase)
	assert.Equal(t, "/uploads/old.png", st.Profile.ProfileImage)
	assert.Same(t, f, st.Selected)
}

func TestUpload_FallbackAndTransportMessages(t *testing.T) {
	s := &profileServer{uploadStatus: http.StatusInternalServerError, uploadBody: `oops`}
	c, _ := newController(t, s)
	require.Error(t, c.Upload(context.Background(), memFile("me.png", "image/png", 4)))
	assert.Equal(t, MsgUploadFailed, c.State().UploadError)

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client, err := api.New(srv.URL)
	require.NoError(t, err)
	c = NewController(client, nil)
	require.ErrorIs(t, c.Upload(context.Background(), memFile("me.png", "image/png", 4)), api.ErrTransport)
	assert.Equal(t, MsgUploadTransport, c.State().UploadError)
}

func TestUpload_ConcurrentUploadIsRefused(t *testing.T) {
	s := &profileServer{block: make(chan struct{}), entered: make(chan struct{})}
	c, _ := newController(t, s)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.Upload(ctx, memFile("a.png", "image/png", 4)) }()
	<-s.entered

	assert.True(t, c.State().Busy())
	assert.Equal(t, PhaseUploading, c.State().Phase)
	assert.ErrorIs(t, c.Upload(ctx, memFile("b.png", "image/png", 4)), common.ErrBusy)
	assert.ErrorIs(t, c.DeleteImage(ctx, true), common.ErrBusy)

	close(s.block)
	require.NoError(t, <-done)

	posts := 0
	for _, r := range s.Requests() {
		if r == "POST "+imagePath {
			posts++
		}
	}
	assert.Equal(t, 1, posts)
}

func TestDeleteImage(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		s := &profileServer{image: "/uploads/me.png"}
		c, _ := newController(t, s)
		require.ErrorIs(t, c.DeleteImage(context.Background(), false), common.ErrNotConfirmed)
		assert.Empty(t, s.Requests())
	})

	t.Run("success refetches", func(t *testing.T) {
		s := &profileServer{image: "/uploads/me.png"}
		c, _ := newController(t, s)
		ctx := context.Background()
		require.NoError(t, c.Fetch(ctx))

		require.NoError(t, c.DeleteImage(ctx, true))

		st := c.State()
		assert.Equal(t, MsgDeleteSucceeded, st.Notice)
		assert.False(t, st.Profile.HasImage())
		assert.Empty(t, c.ImageURL())
		assert.Equal(t, []string{"GET " + profilePath, "DELETE " + imagePath, "GET " + profilePath}, s.Requests())
	})

	t.Run("failure sets upload error", func(t *testing.T) {
		s := &profileServer{image: "/uploads/me.png", deleteStatus: http.StatusInternalServerError}
		c, _ := newController(t, s)
		ctx := context.Background()
		require.NoError(t, c.Fetch(ctx))

		require.Error(t, c.DeleteImage(ctx, true))
		st := c.State()
		assert.Equal(t, MsgDeleteFailed, st.UploadError)
		assert.Equal(t, PhaseFailed, st.Outcome)
		assert.True(t, st.Profile.HasImage())
	})
}
