package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/formpost/formpost/internal/auth"
	"github.com/formpost/formpost/internal/metrics"
	"github.com/formpost/formpost/internal/repository"
	"github.com/formpost/formpost/internal/service"
)

type output struct {
	Email    string `json:"email"`
	SiteKey  string `json:"siteKey"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		jwtSecret   = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Token signing secret; when set a session token is printed")
		email       = flag.String("email", "owner@formpost.local", "Owner email")
		password    = flag.String("password", "", "Owner password (generated when empty)")
		migrate     = flag.Bool("migrate", true, "Apply pending migrations first")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	if *migrate {
		if err := repo.Migrate(ctx, nil); err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(1)
		}
	}

	out := output{Email: *email, Password: *password}
	if out.Password == "" {
		out.Password, err = randomPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate password:", err)
			os.Exit(1)
		}
	}

	// Tokens are only issued when a secret is supplied
	secret := *jwtSecret
	if secret == "" {
		secret = "unused"
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	accounts := service.NewAccountService(repo, auth.NewTokenIssuer(secret, 0), metrics.NewNoop(), logger)

	out.SiteKey, err = accounts.Register(ctx, out.Email, out.Password)
	if errors.Is(err, service.ErrEmailExists) {
		fmt.Fprintf(os.Stderr, "owner %s already exists\n", out.Email)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "register owner:", err)
		os.Exit(1)
	}

	if *jwtSecret != "" {
		result, err := accounts.Login(ctx, out.Email, out.Password)
		if err != nil {
			fmt.Fprintln(os.Stderr, "issue token:", err)
			os.Exit(1)
		}
		out.Token = result.Token
	}
	if *password != "" {
		out.Password = ""
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.SiteKey)
		if out.Token != "" {
			fmt.Println(out.Token)
		}
		if out.Password != "" {
			fmt.Fprintln(os.Stderr, "generated password:", out.Password)
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func randomPassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
