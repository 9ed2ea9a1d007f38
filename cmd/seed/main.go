// seed registers a demo credential in the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ErlanBelekov/secure-login/internal/domain"
	"github.com/ErlanBelekov/secure-login/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/secure-login/internal/password"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "correct-horse-battery"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := password.NewArgon2idHasher(password.DefaultParams).Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	repo := postgres.NewCredentialRepository(pool)
	id, err := repo.Create(ctx, seedEmail, hash)
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		fmt.Println("Seed credential already exists")
	case err != nil:
		log.Fatalf("create credential: %v", err)
	default:
		fmt.Println("Seed complete")
		fmt.Printf("  Credential ID: %s\n", id)
	}

	fmt.Println()
	fmt.Printf("  Email:    %s\n", seedEmail)
	fmt.Printf("  Password: %s\n", seedPassword)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println("    # → {\"sessionToken\":\"...\",\"status\":\"success\"}")
	fmt.Println()
	fmt.Println("  Step 2: check the session:")
	fmt.Println()
	fmt.Println("    export TOKEN=...")
	fmt.Println("    curl -s http://localhost:8080/api/session -H \"Authorization: Bearer $TOKEN\"")
	fmt.Println()
	fmt.Println("  Step 3: log out, then repeat step 2 and expect 401:")
	fmt.Println()
	fmt.Println("    curl -s -X POST http://localhost:8080/api/logout -H \"Authorization: Bearer $TOKEN\"")
}
