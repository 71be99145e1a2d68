package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/userdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

// CookiesKey is the metadata key holding the persisted credential cookies.
const CookiesKey = "cookies"

// CredentialJar is a cookie jar whose contents can be dropped on logout.
type CredentialJar interface {
	http.CookieJar
	Clear(ctx context.Context) error
}

// MemoryJar keeps cookies for the lifetime of the process only.
type MemoryJar struct {
	mu  sync.Mutex
	jar *cookiejar.Jar
}

func NewMemoryJar() *MemoryJar {
	jar, _ := cookiejar.New(nil)
	return &MemoryJar{jar: jar}
}

func (j *MemoryJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
}

func (j *MemoryJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

func (j *MemoryJar) Clear(context.Context) error {
	jar, _ := cookiejar.New(nil)
	j.mu.Lock()
	j.jar = jar
	j.mu.Unlock()
	return nil
}

type storedCookie struct {
	Name  string `json:"name"`
	Path  string `json:"path,omitempty"`
	Value string `json:"value"`
}

// cookieKey identifies a cookie within the API host. Domain is left out: the
// jar only ever talks to the base URL's host.
type cookieKey struct {
	name string
	path string
}

// PersistentJar mirrors the cookies it receives into the metadata store after
// every change, so credentials survive a restart the same way a browser keeps
// them across reloads. Name, path and value are kept; restored cookies are
// host-only cookies of the base URL.
type PersistentJar struct {
	mu     sync.Mutex
	jar    *cookiejar.Jar
	known  map[cookieKey]string
	base   *url.URL
	repo   metadata.Repository
	logger logging.Logger
}

// NewPersistentJar creates the jar and loads previously saved cookies for base.
func NewPersistentJar(ctx context.Context, base *url.URL, repo metadata.Repository, logger logging.Logger) (*PersistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	j := &PersistentJar{jar: jar, known: map[cookieKey]string{}, base: rootOf(base), repo: repo, logger: logger}

	raw, err := repo.Get(ctx, CookiesKey)
	if err != nil {
		return nil, fmt.Errorf("load cookies: %w", err)
	}
	if raw == nil {
		return j, nil
	}

	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		logger.Warn(ctx, "discarding unreadable stored cookies", "error", err)
		return j, nil
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		path := c.Path
		if path == "" {
			path = "/"
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: path})
		j.known[cookieKey{name: c.Name, path: path}] = c.Value
	}
	jar.SetCookies(j.base, cookies)
	return j, nil
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	now := time.Now()

	j.mu.Lock()
	j.jar.SetCookies(u, cookies)
	for _, c := range cookies {
		key := cookieKey{name: c.Name, path: cookiePath(u, c)}
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			delete(j.known, key)
			continue
		}
		j.known[key] = c.Value
	}
	snapshot := make([]storedCookie, 0, len(j.known))
	for k, value := range j.known {
		snapshot = append(snapshot, storedCookie{Name: k.name, Path: k.path, Value: value})
	}
	// saved under the lock so concurrent responses cannot persist out of order
	if err := j.save(context.Background(), snapshot); err != nil {
		j.logger.Error(context.Background(), "failed to persist cookies", "error", err)
	}
	j.mu.Unlock()
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Clear forgets all cookies in memory and on disk.
func (j *PersistentJar) Clear(ctx context.Context) error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = jar
	j.known = map[cookieKey]string{}

	return j.repo.Delete(ctx, CookiesKey)
}

func (j *PersistentJar) save(ctx context.Context, stored []storedCookie) error {
	if len(stored) == 0 {
		return j.repo.Delete(ctx, CookiesKey)
	}
	sort.Slice(stored, func(a, b int) bool {
		if stored[a].Name != stored[b].Name {
			return stored[a].Name < stored[b].Name
		}
		return stored[a].Path < stored[b].Path
	})
	b, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return j.repo.Set(ctx, CookiesKey, b)
}

// cookiePath is the path a cookie jar files c under when it arrives from u:
// the Path attribute, or the directory of the request path (RFC 6265 5.1.4).
func cookiePath(u *url.URL, c *http.Cookie) string {
	if strings.HasPrefix(c.Path, "/") {
		return c.Path
	}
	p := u.Path
	if p == "" || p[0] != '/' {
		return "/"
	}
	i := strings.LastIndex(p, "/")
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func rootOf(u *url.URL) *url.URL {
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}
