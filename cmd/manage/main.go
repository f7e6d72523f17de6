package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dom/restaurant-manager/internal/config"
	"github.com/dom/restaurant-manager/internal/domain"
	"github.com/dom/restaurant-manager/internal/repository"
	"github.com/dom/restaurant-manager/internal/repository/postgres"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Printf("Error: failed to load .env: %v\n", err)
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "migrate":
		migrateCmd(args)
	case "create-user":
		createUserCmd(args)
	case "create-restaurant":
		createRestaurantCmd(args)
	case "revoke-sessions":
		revokeSessionsCmd(args)
	case "set-active":
		setActiveCmd(args)
	case "smoke":
		smokeCmd(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`manage - Back office administration tool

USAGE:
  manage <command> [options]

COMMANDS:
  migrate            Apply database migrations
  create-user        Create a user and assign roles
  create-restaurant  Create a restaurant
  revoke-sessions    Sign a user out of every browser session
  set-active         Activate or deactivate a user
  smoke              Log in and out through the API of a running server
  help               Show this help message

ENVIRONMENT:
  DATABASE_URL  Postgres connection string
  APP_KEY       Application key (required by the config loader)
  API_URL       Server URL for smoke (default: http://localhost:8080)

EXAMPLES:
  # Create a back office administrator
  manage create-user --name="Ada" --email=ada@example.com --password=secret --roles=admin

  # Create an app customer who signs in with a mobile number
  manage create-user --name="Bob" --mobile=5550100 --password=secret --roles=customer

  # Check the API login round trip
  manage smoke --mobile=5550100 --password=secret`)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func openRepositories(cfg *config.Config) *repository.Repositories {
	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		fmt.Printf("Error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	return postgres.NewRepositories(db)
}

func migrateCmd(args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	fs.Parse(args)

	cfg := loadConfig()

	fmt.Print("Applying migrations... ")
	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func createUserCmd(args []string) {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	name := fs.String("name", "", "Display name (required)")
	email := fs.String("email", "", "Email, used for browser login")
	mobile := fs.String("mobile", "", "Mobile number, used for API login")
	password := fs.String("password", "", "Password (required)")
	facebookID := fs.Int64("facebook-id", 0, "Link the account to a Facebook id")
	roles := fs.String("roles", "", "Comma-separated roles: admin, restaurant_manager, customer")
	inactive := fs.Bool("inactive", false, "Create the account deactivated")
	fs.Parse(args)

	if *name == "" || *password == "" {
		fmt.Println("Error: --name and --password are required")
		os.Exit(1)
	}
	if *email == "" && *mobile == "" && *facebookID == 0 {
		fmt.Println("Error: one of --email, --mobile or --facebook-id is required")
		os.Exit(1)
	}

	roleNames, err := parseRoles(*roles)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error: failed to hash password: %v\n", err)
		os.Exit(1)
	}

	user := &domain.User{
		Name:         *name,
		Email:        optional(*email),
		MobileNumber: optional(*mobile),
		PasswordHash: string(hash),
		IsActive:     !*inactive,
	}
	if *facebookID != 0 {
		user.FacebookID = facebookID
	}

	repos := openRepositories(loadConfig())
	ctx := context.Background()

	fmt.Print("Creating user... ")
	if err := repos.User.Create(ctx, user); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	if len(roleNames) > 0 {
		if err := repos.User.AssignRoles(ctx, user, roleNames...); err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("OK (id: %d, roles: %v)\n", user.ID, user.RoleNames())
}

func parseRoles(raw string) ([]domain.RoleName, error) {
	var names []domain.RoleName
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name := domain.RoleName(part)
		if !name.IsValid() {
			return nil, fmt.Errorf("unknown role %q", part)
		}
		names = append(names, name)
	}
	return names, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func createRestaurantCmd(args []string) {
	fs := flag.NewFlagSet("create-restaurant", flag.ExitOnError)
	name := fs.String("name", "", "Restaurant name (required)")
	fs.Parse(args)

	if *name == "" {
		fmt.Println("Error: --name is required")
		os.Exit(1)
	}

	repos := openRepositories(loadConfig())

	restaurant := &domain.Restaurant{Name: *name}
	fmt.Print("Creating restaurant... ")
	if err := repos.Restaurant.Create(context.Background(), restaurant); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (id: %d)\n", restaurant.ID)
}

func revokeSessionsCmd(args []string) {
	fs := flag.NewFlagSet("revoke-sessions", flag.ExitOnError)
	email := fs.String("email", "", "Email of the user to sign out (required)")
	fs.Parse(args)

	if *email == "" {
		fmt.Println("Error: --email is required")
		os.Exit(1)
	}

	ctx := context.Background()
	repos := openRepositories(loadConfig())

	user, err := repos.User.GetByEmail(ctx, *email)
	if err != nil {
		fmt.Printf("Error: failed to find user %s: %v\n", *email, err)
		os.Exit(1)
	}

	fmt.Print("Revoking browser sessions... ")
	if err := repos.Session.DeleteByUserID(ctx, user.ID); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func setActiveCmd(args []string) {
	fs := flag.NewFlagSet("set-active", flag.ExitOnError)
	email := fs.String("email", "", "Email of the user (required)")
	active := fs.Bool("active", true, "New state; --active=false deactivates")
	fs.Parse(args)

	if *email == "" {
		fmt.Println("Error: --email is required")
		os.Exit(1)
	}

	ctx := context.Background()
	repos := openRepositories(loadConfig())

	user, err := repos.User.GetByEmail(ctx, *email)
	if err != nil {
		fmt.Printf("Error: failed to find user %s: %v\n", *email, err)
		os.Exit(1)
	}

	fmt.Printf("Setting active=%t... ", *active)
	if err := repos.User.SetActive(ctx, user.ID, *active); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")

	if !*active {
		fmt.Print("Revoking browser sessions... ")
		if err := repos.Session.DeleteByUserID(ctx, user.ID); err != nil {
			fmt.Printf("FAILED\n  Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("OK")
	}
}

func smokeCmd(args []string) {
	fs := flag.NewFlagSet("smoke", flag.ExitOnError)
	mobile := fs.String("mobile", "", "Mobile number to log in with")
	password := fs.String("password", "", "Password")
	facebookID := fs.Int64("facebook-id", 0, "Log in with a Facebook id instead")
	fs.Parse(args)

	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}
	client := NewAPIClient(apiURL)

	var (
		user  *User
		token string
		err   error
	)

	fmt.Print("Logging in... ")
	switch {
	case *facebookID != 0:
		user, token, err = client.LoginWithFacebook(*facebookID)
	case *mobile != "" && *password != "":
		user, token, err = client.Login(*mobile, *password)
	default:
		fmt.Println("FAILED\n  Error: pass --mobile and --password, or --facebook-id")
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK (user: %s, id: %d)\n", user.Name, user.ID)

	fmt.Print("Logging out... ")
	if err := client.Logout(token); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")

	fmt.Print("Logging out again... ")
	if err := client.Logout(token); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}
