// Command createuser provisions an account:
//
//	createuser <email> <name> <password>
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/viralscript/viralscript/internal/auth"
	"github.com/viralscript/viralscript/internal/config"
	"github.com/viralscript/viralscript/internal/database"
	"github.com/viralscript/viralscript/internal/users"
)

const minNameLength = 2

type input struct {
	email    string
	name     string
	password string
}

func parseArgs(args []string) (input, error) {
	if len(args) != 3 {
		return input{}, errors.New("usage: createuser <email> <name> <password>")
	}
	in := input{
		email:    strings.TrimSpace(args[0]),
		name:     strings.TrimSpace(args[1]),
		password: args[2],
	}

	var problems []string
	if !strings.Contains(in.email, "@") {
		problems = append(problems, "email inválido")
	}
	if len([]rune(in.name)) < minNameLength {
		problems = append(problems, fmt.Sprintf("nome deve ter pelo menos %d caracteres", minNameLength))
	}
	if len([]rune(in.password)) < auth.MinPasswordLength {
		problems = append(problems, fmt.Sprintf("senha deve ter pelo menos %d caracteres", auth.MinPasswordLength))
	}
	if len(problems) > 0 {
		return input{}, errors.New(strings.Join(problems, "; "))
	}
	return in, nil
}

func main() {
	in, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, cfg, in); err != nil {
		slog.Error("creating user", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, in input) error {
	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	hash, err := auth.HashPassword(in.password)
	if err != nil {
		return err
	}

	user, err := users.NewService(users.NewRepository(pool)).Create(ctx, in.email, in.name, hash)
	if errors.Is(err, users.ErrEmailTaken) {
		return fmt.Errorf("email %s já cadastrado", in.email)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Usuário criado: %s (%s) id=%s\n", user.Name, user.Email, user.ID)
	return nil
}
