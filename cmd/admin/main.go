// Package main provides role management utilities for Connecto.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"connecto/internal/config"
	"connecto/internal/database"
	"connecto/internal/models"
	"connecto/internal/repository"
	"connecto/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin/main.go promote <user_id> [ADMIN|SUPER_ADMIN]  - Grant an admin role (default ADMIN)")
	fmt.Println("  go run ./cmd/admin/main.go demote <user_id>                       - Reset a user to USER")
	fmt.Println("  go run ./cmd/admin/main.go list-admins                           - List all admins")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	users := service.NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	switch os.Args[1] {
	case "promote":
		role := models.RoleAdmin
		if len(os.Args) > 3 {
			role = models.Role(strings.ToUpper(os.Args[3]))
		}
		setRole(ctx, users, os.Args, role)
	case "demote":
		setRole(ctx, users, os.Args, models.RoleUser)
	case "list-admins":
		listAdmins(ctx, users)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func setRole(ctx context.Context, users *service.UserService, args []string, role models.Role) {
	if len(args) < 3 {
		usage()
		os.Exit(1)
	}
	id, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil || id == 0 {
		fmt.Printf("Invalid user ID %q\n", args[2])
		os.Exit(1)
	}

	user, err := users.SetRole(ctx, uint(id), role)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code != models.CodeInternal {
			fmt.Println(appErr.Message)
			os.Exit(1)
		}
		log.Fatalf("Failed to set role: %v", err)
	}

	fmt.Printf("✅ %s (ID: %d) is now %s\n", user.Name, user.ID, user.Role)
}

func listAdmins(ctx context.Context, users *service.UserService) {
	admins, err := users.ListAdmins(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Name: %s | Email: %s | Role: %s\n", admin.ID, admin.Name, admin.Email, admin.Role)
	}
	fmt.Println("─────────────────────────────────────")
}
