package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"strategyboard/app/config"
	"strategyboard/app/services"
	"strategyboard/commands"
)

const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line. It is separate from main so tests
// can replace exit.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	args := os.Args[2:]
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("strategyboard version %s\n", CliVersion)
	case "serve":
		run(serve(args))
	case "seed":
		run(seed(args))
	case "clean":
		run(withConfig(func(cfg config.Config) error {
			return commands.Clean(cfg, os.Stdin, os.Stdout)
		}))
	case "backup":
		run(withConfig(func(cfg config.Config) error {
			_, err := commands.Backup(cfg, os.Stdout)
			return err
		}))
	case "restore":
		if len(args) < 1 {
			fmt.Println("Error: backup file path required for restore")
			exit(1)
			return
		}
		run(withConfig(func(cfg config.Config) error {
			return commands.Restore(cfg, args[0], os.Stdin, os.Stdout)
		}))
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: strategyboard <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve     [options]            Run the bulletin-board API (see serve -h).
  seed      [-n N]               Seed N sample posts into an empty store (default 50).
  clean                          Remove the Badger database.
  backup                         Back up the Badger database to data/backups.
  restore   <file>               Restore the Badger database from a backup.

Environment:
  APP_ADDR, STORE_DRIVER, BADGER_PATH, DATABASE_URL,
  SEED_ON_START, SEED_COUNT, SHUTDOWN_TIMEOUT
`
	fmt.Println(helpText)
}

func run(err error) {
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func withConfig(f func(config.Config) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return f(cfg)
}

func serve(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfg.BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Serve(ctx, cfg); err != nil {
		return err
	}
	log.Println("Goodbye")
	return nil
}

func seed(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	n := fs.Int("n", services.DefaultSeedCount, "number of posts to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *n < 1 {
		return fmt.Errorf("-n must be positive, got %d", *n)
	}

	return withConfig(func(cfg config.Config) error {
		return commands.Seed(context.Background(), cfg, *n, os.Stdout)
	})
}
