// Package main is the entry point for the Courier admin CLI.
// It manages accounts and messages directly against the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/config"
	"github.com/lkral/courier/internal/pkg/logging"
	"github.com/lkral/courier/internal/repository"
	"github.com/lkral/courier/internal/repository/postgres"
	"github.com/lkral/courier/internal/repository/sqlite"
	"github.com/lkral/courier/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version":
		fmt.Printf("Courier Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		if err := runUserCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "message":
		if err := runMessageCommand(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: courier-admin user <create|edit|delete|list> [flags]")
	}

	switch args[0] {
	case "create":
		fs := flag.NewFlagSet("user create", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "username of the new account")
		password := fs.String("password", "", "password of the new account")
		_ = fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.MessageService) error {
			user, err := users.Create(ctx, service.CreateAccountInput{
				Username: *username,
				Password: *password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Account created: %s (id %d)\n", user.Username, user.ID)
			return nil
		})

	case "edit":
		fs := flag.NewFlagSet("user edit", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "username of the account")
		password := fs.String("password", "", "new password")
		_ = fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.MessageService) error {
			user, err := users.Edit(ctx, *username, *password)
			if err != nil {
				return err
			}
			fmt.Printf("Password updated: %s (id %d)\n", user.Username, user.ID)
			return nil
		})

	case "delete":
		fs := flag.NewFlagSet("user delete", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "username of the account")
		password := fs.String("password", "", "password of the account")
		_ = fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.MessageService) error {
			if err := users.Delete(ctx, *username, *password); err != nil {
				return err
			}
			fmt.Printf("Account deleted: %s\n", *username)
			return nil
		})

	case "list":
		fs := flag.NewFlagSet("user list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		_ = fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, users *service.UserService, _ *service.MessageService) error {
			list, err := users.List(ctx)
			if err != nil {
				return err
			}
			for _, user := range list {
				fmt.Printf("%d\t%s\n", user.ID, user.Username)
			}
			return nil
		})

	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func runMessageCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: courier-admin message <send|list> [flags]")
	}

	switch args[0] {
	case "send":
		fs := flag.NewFlagSet("message send", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "sender username")
		password := fs.String("password", "", "sender password")
		to := fs.String("to", "", "recipient username")
		text := fs.String("text", "", "message text")
		_ = fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, _ *service.UserService, messages *service.MessageService) error {
			msg, err := messages.Send(ctx, service.SendInput{
				Username: *username,
				Password: *password,
				To:       *to,
				Text:     *text,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Message sent (id %d)\n", msg.ID)
			return nil
		})

	case "list":
		fs := flag.NewFlagSet("message list", flag.ExitOnError)
		configPath := fs.String("config", "", "path to config file")
		username := fs.String("username", "", "username of the inbox owner")
		password := fs.String("password", "", "password of the inbox owner")
		_ = fs.Parse(args[1:])

		return withServices(*configPath, func(ctx context.Context, _ *service.UserService, messages *service.MessageService) error {
			inbox, err := messages.ListInbox(ctx, *username, *password)
			if err != nil {
				return err
			}
			for _, msg := range inbox {
				fmt.Printf("From: %s\n", msg.From)
				fmt.Printf("Message: %s\n", msg.Text)
				fmt.Printf("Date: %s\n\n", msg.Date.Format("2006-01-02 15:04:05"))
			}
			return nil
		})

	default:
		return fmt.Errorf("unknown message subcommand: %s", args[0])
	}
}

// withServices opens the configured store, runs fn and closes everything.
func withServices(configPath string, fn func(context.Context, *service.UserService, *service.MessageService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// CLI runs stay quiet unless something goes wrong.
	logger := zerolog.Nop()
	if cfg.Logging.Level == "debug" {
		logger = logging.New(cfg.Logging)
	}

	ctx := context.Background()

	userRepo, msgRepo, closeStores, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	users := service.NewUserService(userRepo, logger)
	messages := service.NewMessageService(userRepo, msgRepo, logger)
	return fn(ctx, users, messages)
}

func openRepositories(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.UserRepository, repository.MessageRepository, func(), error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewUserRepository(db), postgres.NewMessageRepository(db), func() { _ = db.Close() }, nil
	default:
		dbCfg := sqlite.DefaultConfig(cfg.Database.Path)
		dbCfg.JournalMode = cfg.Database.JournalMode
		dbCfg.BusyTimeout = cfg.Database.BusyTimeout
		db, err := sqlite.NewDB(ctx, dbCfg, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}
		return sqlite.NewUserRepository(db), sqlite.NewMessageRepository(db), func() { _ = db.Close() }, nil
	}
}

func printUsage() {
	fmt.Println(`Courier Admin CLI

Usage:
  courier-admin <command> [arguments]

Commands:
  user        Manage accounts (create, edit, delete, list)
  message     Send and read messages (send, list)
  version     Print version information
  help        Show this help message

Examples:
  courier-admin user create -username alice -password secret123
  courier-admin user edit -username alice -password newsecret1
  courier-admin user delete -username alice -password newsecret1
  courier-admin user list
  courier-admin message send -username alice -password secret123 -to bob -text "hello"
  courier-admin message list -username bob -password hunter2222

Use "courier-admin <command> <subcommand> -h" for flag details.`)
}
