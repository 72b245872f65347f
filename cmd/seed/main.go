package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/oksasatya/library-management/config"
	app "github.com/oksasatya/library-management/internal/application"
	"github.com/oksasatya/library-management/internal/domain/entity"
	pginfra "github.com/oksasatya/library-management/internal/infrastructure/postgres"
	"github.com/oksasatya/library-management/pkg/helpers"
)

var (
	cfg    *config.Config
	logger *logrus.Logger
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "Database maintenance for the library service",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			cfg = config.Load()
			logger = helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
		},
	}
	root.AddCommand(migrateCmd(), rolesCmd(), adminCmd())
	return root
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger)
		},
	}
}

func rolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles",
		Short: "Ensure the default roles exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *pginfra.Store) error {
				if err := app.NewRoleDirectory(store).EnsureDefaults(ctx); err != nil {
					return err
				}
				fmt.Printf("roles ensured: %s\n", strings.Join(app.DefaultRoles, ", "))
				return nil
			})
		},
	}
}

func adminCmd() *cobra.Command {
	var email, first, last string
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create an admin account, or grant admin to an existing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, store *pginfra.Store) error {
				if err := app.NewRoleDirectory(store).EnsureDefaults(ctx); err != nil {
					return fmt.Errorf("ensure roles: %w", err)
				}
				users := app.NewUserService(store, nil, app.MailInfo{}, logger)
				u, err := users.Get(ctx, email)
				switch {
				case err == nil:
					if u.HasRole(entity.RoleAdmin) {
						fmt.Printf("%s is already an admin\n", u.Email)
						return nil
					}
					roles := append(slices.Clone(u.Roles), entity.RoleAdmin)
					if _, err := users.Update(ctx, email, app.UserPatch{Roles: &roles}); err != nil {
						return err
					}
					fmt.Printf("granted admin to %s\n", u.Email)
					return nil
				case !errors.Is(err, app.ErrUserNotFound):
					return err
				}

				password, err := readPassword()
				if err != nil {
					return err
				}
				u, err = users.CreateUser(ctx, app.CreateUserInput{
					Email:     email,
					FirstName: first,
					LastName:  last,
					Password:  password,
					Role:      entity.RoleAdmin,
				})
				if err != nil {
					return err
				}
				fmt.Printf("created admin %s (id=%s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin e-mail address")
	cmd.Flags().StringVar(&first, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&last, "last-name", "", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func withStore(ctx context.Context, fn func(ctx context.Context, store *pginfra.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		AppName:     cfg.AppName + "-seed",
		MaxConns:    2,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	return fn(ctx, pginfra.NewStore(pool))
}

// readPassword prompts on a terminal, or reads one line when stdin is piped.
func readPassword() (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Print("Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Print("Confirm password: ")
	again, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(pw) != string(again) {
		return "", errors.New("passwords do not match")
	}
	return string(pw), nil
}
