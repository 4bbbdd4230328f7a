// Package main provides a CLI tool for creating accounts and setting their
// roles.
//
// Usage:
//
//	account create -username NAME -password PASS [-role player]
//	account role   -username NAME -role ROLE
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cory-johannsen/warband/internal/config"
	"github.com/cory-johannsen/warband/internal/storage/postgres"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s create|role [flags]\n", os.Args[0])
	os.Exit(2)
}

func main() {
	start := time.Now()
	if len(os.Args) < 2 {
		usage()
	}

	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	configPath := fs.String("config", "configs/dev.yaml", "path to configuration file")
	username := fs.String("username", "", "account username (required)")
	password := fs.String("password", "", "account password (create only)")
	role := fs.String("role", "", "role: "+strings.Join(postgres.Roles, ", "))
	_ = fs.Parse(os.Args[2:])

	if *username == "" {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewAccountRepository(pool.DB())

	switch os.Args[1] {
	case "create":
		err = create(ctx, repo, *username, *password, *role)
	case "role":
		err = setRole(ctx, repo, *username, *role)
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(os.Stdout, "done [%s]\n", time.Since(start))
}

func create(ctx context.Context, repo *postgres.AccountRepository, username, password, role string) error {
	if password == "" {
		return errors.New("create requires -password")
	}
	if role == "" {
		role = postgres.RolePlayer
	}
	acct, err := repo.Create(ctx, username, password, role)
	if err != nil {
		return fmt.Errorf("creating account %q: %w", username, err)
	}
	fmt.Fprintf(os.Stdout, "created %s (#%d) as %s\n", acct.Username, acct.ID, acct.Role)
	return nil
}

func setRole(ctx context.Context, repo *postgres.AccountRepository, username, role string) error {
	if !postgres.ValidRole(role) {
		return fmt.Errorf("invalid role %q: must be one of %s", role, strings.Join(postgres.Roles, ", "))
	}
	acct, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("looking up account %q: %w", username, err)
	}
	if err := repo.SetRole(ctx, acct.ID, role); err != nil {
		return fmt.Errorf("setting role: %w", err)
	}
	fmt.Fprintf(os.Stdout, "set role for %s (#%d): %s -> %s\n", acct.Username, acct.ID, acct.Role, role)
	return nil
}
