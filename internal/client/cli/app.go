package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/userdesk/internal/client/api"
	"github.com/dmitrijs2005/userdesk/internal/client/config"
	"github.com/dmitrijs2005/userdesk/internal/client/login"
	"github.com/dmitrijs2005/userdesk/internal/client/profile"
	"github.com/dmitrijs2005/userdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/userdesk/internal/client/resources"
	"github.com/dmitrijs2005/userdesk/internal/client/session"
	"github.com/dmitrijs2005/userdesk/internal/client/storage"
	"github.com/dmitrijs2005/userdesk/internal/logging"
)

var errNotLoggedIn = errors.New("not logged in")

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	client   *api.Client
	sessions *session.Manager
	login    *login.Controller
	profile  *profile.Controller
	views    map[string]resourceView
	current  resourceView
	landed   bool
	reader   *bufio.Reader
	out      io.Writer
}

// NewApp opens the local store, restores the saved session and wires the
// controllers. The REPL reads from stdin and writes to stdout.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	return newApp(ctx, c, logger, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	if logger == nil {
		logger = logging.NopLogger{}
	}

	base, err := api.ParseBaseURL(c.APIBaseURL)
	if err != nil {
		return nil, err
	}

	db, err := storage.InitDatabase(ctx, c.StorePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.StorePath, "error", err)
		return nil, err
	}

	repo := metadata.NewSQLiteRepository(db)
	jar, err := api.NewPersistentJar(ctx, base, repo, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	client, err := api.New(c.APIBaseURL,
		api.WithJar(jar),
		api.WithTimeout(c.RequestTimeout),
		api.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sessions := session.NewManager(session.NewSQLiteStore(repo), client, logger)
	client.SetInvalidator(sessions)
	sessions.Restore(ctx)

	a := &App{
		config:   c,
		logger:   logger,
		db:       db,
		client:   client,
		sessions: sessions,
		profile:  profile.NewController(client, logger),
		reader:   bufio.NewReader(in),
		out:      out,
	}
	a.login = login.NewController(sessions, func() { a.landed = true }, logger)
	a.views = map[string]resourceView{
		"users": newUsersView(resources.NewListController(resources.Users(), client, logger)),
		"items": newItemsView(resources.NewListController(resources.Items(), client, logger)),
	}
	return a, nil
}

// Run shows the landing view (or asks for credentials) and then blocks in
// the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.println("Welcome to userdesk (type 'help' for commands)")
	if a.login.Enter() {
		a.land(ctx)
	} else {
		_ = a.Login(ctx)
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Current().IsLoggedIn
}

func (a *App) status() string {
	s := a.sessions.Current()
	if !s.IsLoggedIn {
		return "(logged out)"
	}
	if a.current == nil {
		return fmt.Sprintf("(%s)", s.Identity.Email)
	}
	page, total := a.current.Page()
	return fmt.Sprintf("(%s %s %d/%d)", s.Identity.Email, a.current.Name(), page, total)
}

func (a *App) requireLogin() error {
	if a.isLoggedIn() {
		return nil
	}
	a.println("Please log in first.")
	return errNotLoggedIn
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
