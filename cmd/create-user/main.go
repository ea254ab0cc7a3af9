package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/edustack/assess-backend/internal/config"
	"github.com/edustack/assess-backend/internal/database"
	"github.com/edustack/assess-backend/internal/logger"
	"github.com/edustack/assess-backend/internal/model"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	users := store.NewPostgresUserStore(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Role
	fmt.Print("Enter Role (student/admin, default student): ")
	roleStr, _ := reader.ReadString('\n')
	roleStr = strings.TrimSpace(roleStr)
	role := model.RoleStudent
	switch roleStr {
	case "", "student":
	case "admin":
		role = model.RoleAdmin
	default:
		fmt.Println("Error: Role must be student or admin")
		return
	}

	// Batch (students only)
	var batchID string
	if role == model.RoleStudent {
		fmt.Print("Enter Batch ID: ")
		batchID, _ = reader.ReadString('\n')
		batchID = strings.TrimSpace(batchID)
		if batchID == "" {
			fmt.Println("Error: Batch ID is required for students")
			return
		}
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	newUser := &model.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		BatchID:      batchID,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := users.Create(ctx, newUser); err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nSuccess! User '%s' (%s) created with ID: %s\n", newUser.Name, newUser.Email, newUser.ID)
}
