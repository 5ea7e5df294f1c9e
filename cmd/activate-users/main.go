// activate-users manually verifies accounts, bypassing the email
// confirmation flow. It never touches confirmation token state.
//
//	activate-users --list-unverified
//	activate-users alice@example.com bob@example.com
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/wanderwise/account-service/internal/infrastructure/postgres"
	"github.com/wanderwise/account-service/internal/usecase"
)

type options struct {
	ListUnverified bool `long:"list-unverified" description:"List all unverified users"`

	Args struct {
		Emails []string `positional-arg-name:"email" description:"Email addresses of users to activate"`
	} `positional-args:"yes"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[--list-unverified] [email ...]"

	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	if opts.ListUnverified && len(opts.Args.Emails) > 0 {
		fmt.Fprintln(os.Stderr, "--list-unverified takes no email arguments")
		os.Exit(2)
	}
	if !opts.ListUnverified && len(opts.Args.Emails) == 0 {
		parser.WriteHelp(os.Stderr)
		os.Exit(2)
	}

	// os.Exit skips deferred calls, so run returns the exit code and the
	// pool is closed before the process exits.
	os.Exit(run(context.Background(), opts))
}

func run(ctx context.Context, opts options) int {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Print("DATABASE_URL is not set")
		return 1
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Printf("db connect: %v", err)
		return 1
	}
	defer pool.Close()

	activation := usecase.NewActivationUsecase(postgres.NewUserRepository(pool))

	if opts.ListUnverified {
		return listUnverified(ctx, activation)
	}
	return activate(ctx, activation, opts.Args.Emails)
}

func listUnverified(ctx context.Context, activation *usecase.ActivationUsecase) int {
	users, err := activation.ListUnverified(ctx)
	if err != nil {
		log.Printf("list unverified: %v", err)
		return 1
	}

	if len(users) == 0 {
		fmt.Println("No unverified users found.")
		return 0
	}

	fmt.Printf("Found %d unverified user(s):\n", len(users))
	for _, u := range users {
		fmt.Printf("  - %s (joined: %s)\n", u.Email, u.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return 0
}

func activate(ctx context.Context, activation *usecase.ActivationUsecase, emails []string) int {
	results, err := activation.ActivateUsers(ctx, emails)
	if err != nil {
		log.Printf("activate: %v", err)
		return 1
	}

	var activated, notFound int
	for _, r := range results {
		switch r.Outcome {
		case usecase.ActivationActivated:
			activated++
			fmt.Printf("activated: %s\n", r.Email)
		case usecase.ActivationAlreadyVerified:
			fmt.Printf("already verified: %s\n", r.Email)
		case usecase.ActivationNotFound:
			notFound++
			fmt.Fprintf(os.Stderr, "user not found: %s\n", r.Email)
		}
	}

	if activated > 0 {
		fmt.Printf("\nSuccessfully activated %d user(s).\n", activated)
	}
	if notFound > 0 {
		return 1
	}
	return 0
}
