package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/anonto42/nano-forum/backend/internal/accounts"
	"github.com/anonto42/nano-forum/backend/internal/app"
	"github.com/anonto42/nano-forum/backend/internal/models"
	"github.com/anonto42/nano-forum/backend/internal/repositories"
	"github.com/anonto42/nano-forum/backend/internal/session"
	"github.com/anonto42/nano-forum/backend/pkg/config"
	"github.com/anonto42/nano-forum/backend/pkg/logger"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := newCommand(openStore, os.Stdout).Run(ctx, os.Args); err != nil {
		slog.ErrorContext(ctx, "forumctl failed", "error", err)
		os.Exit(1)
	}
}

// store is what the subcommands operate on.
type store struct {
	db       *gorm.DB
	sessions repositories.SessionRepository
	log      *slog.Logger
	close    func()
}

type opener func(ctx context.Context) (*store, error)

func openStore(ctx context.Context) (*store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Env)
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}
	if err := repositories.Migrate(db.SQL); err != nil {
		db.CloseDB(log)
		return nil, err
	}
	sessions, err := app.SessionRepository(ctx, cfg, db)
	if err != nil {
		db.CloseDB(log)
		return nil, err
	}
	return &store{db: db.SQL, sessions: sessions, log: log, close: func() { db.CloseDB(log) }}, nil
}

func newCommand(open opener, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "forumctl",
		Usage: "Administer the forum database",
		Commands: []*cli.Command{
			{
				Name:  "create-admin",
				Usage: "Create an admin account, or promote the account with this email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Username of the admin", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email of the admin", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password of the admin", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := open(ctx)
					if err != nil {
						return err
					}
					defer s.close()

					svc := accounts.NewService(repositories.NewGormUserRepository(s.db))
					user, created, err := svc.EnsureAdmin(ctx, models.CreateUserRequest{
						Username: cmd.String("username"),
						Email:    cmd.String("email"),
						Password: cmd.String("password"),
					})
					if err != nil {
						return err
					}
					if created {
						fmt.Fprintf(out, "created admin %s (id %d)\n", user.Username, user.ID)
					} else {
						fmt.Fprintf(out, "%s (id %d) is an admin\n", user.Username, user.ID)
					}
					return nil
				},
			},
			{
				Name:  "set-role",
				Usage: "Change the role of a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email of the user", Required: true},
					&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "One of admin, moderator, user", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := open(ctx)
					if err != nil {
						return err
					}
					defer s.close()

					svc := accounts.NewService(repositories.NewGormUserRepository(s.db))
					user, err := svc.SetRole(ctx, cmd.String("email"), models.Role(cmd.String("role")))
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s (id %d) is now %s\n", user.Username, user.ID, user.Role)
					return nil
				},
			},
			{
				Name:  "prune-sessions",
				Usage: "Delete expired sessions",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					s, err := open(ctx)
					if err != nil {
						return err
					}
					defer s.close()

					n, err := session.NewManager(s.sessions, 0, false, s.log).Prune(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "pruned %d expired sessions\n", n)
					return nil
				},
			},
		},
	}
}
