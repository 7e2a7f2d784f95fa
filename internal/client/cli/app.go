package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/opscore/cmdcenter/internal/client/api"
	"github.com/opscore/cmdcenter/internal/client/config"
	"github.com/opscore/cmdcenter/internal/client/lockout"
	"github.com/opscore/cmdcenter/internal/client/models"
	"github.com/opscore/cmdcenter/internal/client/session"
	"github.com/opscore/cmdcenter/internal/client/state"
	"github.com/opscore/cmdcenter/internal/logging"
)

// App ties the console's moving parts together: the typed API client, the
// session state machine, the durable lockout timer, and the REPL I/O.
type App struct {
	config  *config.Config
	api     *api.Client
	session *session.Manager
	lockout *lockout.Timer
	db      *sql.DB
	log     logging.Logger
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := state.OpenDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "err", err)
		return nil, err
	}

	apiClient, err := api.New(c.ServerURL, api.WithLogger(log))
	if err != nil {
		return nil, err
	}

	timer := lockout.NewTimer(state.NewSQLiteRepository(db))
	if err := timer.Restore(ctx); err != nil {
		log.Warn(ctx, "could not restore lockout state", "err", err)
	}

	sess := session.NewManager(apiClient, log)
	apiClient.OnSessionLost(func() {
		sess.HandleSessionLost()
		fmt.Println("Session expired, please log in again.")
	})

	return &App{
		config:  c,
		api:     apiClient,
		session: sess,
		lockout: timer,
		db:      db,
		log:     log,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run resolves the initial session state, starts the background heartbeat and
// lockout countdown, and hands control to the REPL. Blocks until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	a.session.Bootstrap(ctx)
	if u := a.session.CurrentUser(); u != nil {
		fmt.Printf("Welcome back, %s (%s)\n", u.Username, u.Role)
	}

	go a.session.RunHeartbeat(ctx, a.config.HeartbeatInterval)
	go a.lockout.Run(ctx, nil, func() {
		fmt.Println("Account lockout has expired, you may log in again.")
	})

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

func (a *App) isSuperadmin() bool {
	return a.session.HasRole(models.RoleSuperadmin)
}

// requireRole refuses a command the current session's role cannot perform.
// An anonymous session is sent to the login prompt instead of an error.
func (a *App) requireRole(role models.Role) bool {
	if !a.isLoggedIn() {
		fmt.Println("Please log in first.")
		return false
	}
	if !a.session.HasRole(role) {
		fmt.Println("Your role does not permit this command.")
		return false
	}
	return true
}
