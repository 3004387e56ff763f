package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/amirasaad/iebank/infra/initializer"
	"github.com/amirasaad/iebank/pkg/app"
	"github.com/amirasaad/iebank/pkg/config"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [flags]

Commands:
  create-admin --username <name> --email <email>   create an admin user (password read from the terminal or stdin)
  migrate                                           apply database migrations
`

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err) //nolint:errcheck
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) < 1 {
		fmt.Fprint(stdout, usage) //nolint:errcheck
		return errors.New("missing command")
	}
	switch args[0] {
	case "create-admin":
		return createAdmin(args[1:], stdin, stdout)
	case "migrate":
		return migrate(stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage) //nolint:errcheck
		return nil
	default:
		fmt.Fprint(stdout, usage) //nolint:errcheck
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func createAdmin(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(stdout)
	username := fs.String("username", "admin", "admin username")
	email := fs.String("email", "", "admin email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("--email is required")
	}

	password, err := promptPassword(stdin, stdout)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer cleanup() //nolint:errcheck

	bank := app.New(deps, cfg)
	u, err := bank.UserService.CreateAdmin(context.Background(), *username, *email, password)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Fprintf(stdout, "Admin %s created (id %s)\n", u.Username, u.ID) //nolint:errcheck
	return nil
}

func migrate(stdout io.Writer) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}
	if cfg.DB.Driver != initializer.DriverPostgres {
		return fmt.Errorf("migrate requires the %s driver, got %q", initializer.DriverPostgres, cfg.DB.Driver)
	}
	cfg.DB.AutoMigrate = true
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	defer cleanup() //nolint:errcheck
	deps.Logger.Info("Migrations complete")
	color.New(color.FgGreen).Fprintln(stdout, "Migrations applied") //nolint:errcheck
	return nil
}

// promptPassword reads the password without echo from a terminal, or a
// single line when stdin is piped.
func promptPassword(stdin io.Reader, stdout io.Writer) (string, error) {
	if f, ok := stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		fmt.Fprint(stdout, "Enter password: ") //nolint:errcheck
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(stdout) //nolint:errcheck
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
