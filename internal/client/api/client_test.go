package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/userdesk/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.calls.Add(1)
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, append([]Option{WithHTTPClient(srv.Client())}, opts...)...)
	require.NoError(t, err)
	return c, srv
}

func TestNew_RejectsRelativeBaseURL(t *testing.T) {
	_, err := New("localhost:3000")
	require.Error(t, err)

	_, err = New("/api")
	require.Error(t, err)

	c, err := New("http://localhost:3000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", c.BaseURL())
	assert.Equal(t, "http://localhost:3000/uploads/a.png", c.URL("uploads/a.png"))
}

func TestDo_SendsJSONBodyAndQuery(t *testing.T) {
	var (
		gotMethod, gotPath, gotPage, gotCT, gotReqID string
		gotBody                                      map[string]string
	)
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotPage = r.URL.Query().Get("page")
		gotCT = r.Header.Get("Content-Type")
		gotReqID = r.Header.Get(common.RequestIDHeaderName)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"_id":"42"}`)
	}))

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/user",
		Query:  map[string][]string{"page": {"2"}},
		Body:   map[string]string{"username": "ann"},
	})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, http.StatusCreated, resp.Status)

	var created struct {
		ID string `json:"_id"`
	}
	require.NoError(t, resp.Decode(&created))
	assert.Equal(t, "42", created.ID)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/user", gotPath)
	assert.Equal(t, "2", gotPage)
	assert.Equal(t, "application/json", gotCT)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, map[string]string{"username": "ann"}, gotBody)
}

func TestDo_CookiesAreSentBack(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user/login":
			http.SetCookie(w, &http.Cookie{Name: "token", Value: "abc", Path: "/"})
			w.WriteHeader(http.StatusOK)
		case "/api/user/profile":
			ck, err := r.Cookie("token")
			if err != nil || ck.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, `{"_id":"1"}`)
		}
	}))
	ctx := context.Background()

	_, err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/api/user/login"})
	require.NoError(t, err)

	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/user/profile"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	require.NoError(t, c.ClearCredentials(ctx))
	_, err = c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/user/profile"})
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestDo_UnauthorizedInvalidatesOnce(t *testing.T) {
	inv := &countingInvalidator{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `not json at all`)
	}), WithInvalidator(inv))

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/user/profile"})
	require.ErrorIs(t, err, ErrUnauthorized)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.EqualValues(t, 1, inv.calls.Load())
}

func TestDo_SkipInvalidate(t *testing.T) {
	inv := &countingInvalidator{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	c.SetInvalidator(inv)

	_, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/user/login", SkipInvalidate: true})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.EqualValues(t, 0, inv.calls.Load())
}

func TestDo_ApplicationErrorIsReturnedAsIs(t *testing.T) {
	inv := &countingInvalidator{}
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Email already in use"}`)
	}), WithInvalidator(inv))

	resp, err := c.Do(context.Background(), Request{Method: http.MethodPost, Path: "/api/user", Body: map[string]string{}})
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Equal(t, "Email already in use", resp.Message())

	statusErr := resp.Err("Operation failed")
	var se *StatusError
	require.ErrorAs(t, statusErr, &se)
	assert.Equal(t, http.StatusConflict, se.Status)
	assert.Equal(t, "Email already in use", UserMessage(statusErr))
	assert.EqualValues(t, 0, inv.calls.Load())
}

func TestResponse_ErrFallback(t *testing.T) {
	r := &Response{Status: http.StatusInternalServerError, Body: []byte("<html>oops</html>")}
	assert.Equal(t, "Operation failed", UserMessage(r.Err("Operation failed")))

	ok := &Response{Status: http.StatusNoContent}
	assert.NoError(t, ok.Err("unused"))
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url)
	require.NoError(t, err)

	resp, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/api/user"})
	require.Nil(t, resp)
	require.ErrorIs(t, err, ErrTransport)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "GET /api/user", te.Op)
	assert.Equal(t, MsgConnectionFailed, UserMessage(err))
}

func TestDo_CancelledContextIsTransportError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/item"})
	require.ErrorIs(t, err, ErrTransport)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestDo_MultipartUpload(t *testing.T) {
	var (
		gotName, gotType, gotContent string
	)
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotType, gotContent = hdr.Filename, hdr.Header.Get("Content-Type"), string(b)
		_, _ = io.WriteString(w, `{"profileImage":"/uploads/me.png"}`)
	}))

	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/user/profile/image",
		File:   &FilePart{Field: "file", FileName: "me.png", ContentType: "image/png", Reader: strings.NewReader("PNGDATA")},
	})
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, "me.png", gotName)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "PNGDATA", gotContent)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, MsgSessionExpired, UserMessage(ErrUnauthorized))
	assert.Equal(t, "Name is required", UserMessage(common.NewValidationError("name", "Name is required")))
}
