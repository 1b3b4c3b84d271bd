package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Demo presenter credentials created by the seed command
const (
	seedUsername = "demo"
	seedPassword = "changeme123"
)

// seedPasswordHash hashes the demo password the same way the auth service
// hashes registrations, so the seeded account accepts seedPassword at login.
func seedPasswordHash() (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// Get command
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	// Connect to database
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS votes CASCADE`,
		`DROP TABLE IF EXISTS options CASCADE`,
		`DROP TABLE IF EXISTS questions CASCADE`,
		`DROP TABLE IF EXISTS polls CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(100) UNIQUE NOT NULL,
			hashed_password VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS polls (
			id BIGSERIAL PRIMARY KEY,
			slug VARCHAR(6) UNIQUE NOT NULL,
			title VARCHAR(255) NOT NULL,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			closed_at TIMESTAMPTZ,
			closes_at TIMESTAMPTZ,
			color_palette VARCHAR(50) NOT NULL DEFAULT 'lehigh_soft',
			slide_duration INTEGER NOT NULL DEFAULT 3,
			enable_title_page BOOLEAN NOT NULL DEFAULT false,
			owner_id BIGINT REFERENCES users(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS questions (
			id BIGSERIAL PRIMARY KEY,
			poll_id BIGINT NOT NULL REFERENCES polls(id) ON DELETE CASCADE,
			text TEXT NOT NULL,
			question_type VARCHAR(20) NOT NULL,
			visualization_type VARCHAR(20) NOT NULL DEFAULT 'bar',
			display_order INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS options (
			id BIGSERIAL PRIMARY KEY,
			question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			text TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS votes (
			id BIGSERIAL PRIMARY KEY,
			question_id BIGINT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
			option_id BIGINT REFERENCES options(id) ON DELETE CASCADE,
			text_answer TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		// Create indexes
		`CREATE INDEX IF NOT EXISTS idx_polls_owner_id ON polls(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_polls_closes_at ON polls(closes_at) WHERE is_active = true`,
		`CREATE INDEX IF NOT EXISTS idx_questions_poll_id ON questions(poll_id, display_order)`,
		`CREATE INDEX IF NOT EXISTS idx_options_question_id ON options(question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_question_id ON votes(question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_option_id ON votes(option_id)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w\nQuery: %s", err, query)
		}
	}

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	hashed, err := seedPasswordHash()
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	var ownerID int64
	err = conn.QueryRow(ctx, `
		INSERT INTO users (username, hashed_password) VALUES
		($1, $2)
		ON CONFLICT (username) DO UPDATE SET hashed_password = EXCLUDED.hashed_password
		RETURNING id
	`, seedUsername, hashed).Scan(&ownerID)
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	var pollID int64
	err = conn.QueryRow(ctx, `
		INSERT INTO polls (slug, title, is_active, color_palette, owner_id) VALUES
		('ab12cd', 'Demo Poll', true, 'vibrant', $1)
		ON CONFLICT (slug) DO UPDATE SET title = EXCLUDED.title
		RETURNING id
	`, ownerID).Scan(&pollID)
	if err != nil {
		return fmt.Errorf("failed to seed poll: %w", err)
	}

	var questionID int64
	err = conn.QueryRow(ctx, `
		INSERT INTO questions (poll_id, text, question_type, visualization_type, display_order)
		VALUES ($1, 'Which feature should we build next?', 'multiple_choice', 'bar', 0)
		RETURNING id
	`, pollID).Scan(&questionID)
	if err != nil {
		return fmt.Errorf("failed to seed question: %w", err)
	}

	_, err = conn.Exec(ctx, `
		INSERT INTO options (question_id, text) VALUES
		($1, 'Dark mode'), ($1, 'Mobile app'), ($1, 'Export to CSV')
	`, questionID)
	if err != nil {
		return fmt.Errorf("failed to seed options: %w", err)
	}

	fmt.Printf("  Seeded presenter %q (id=%d, password %q) and poll ab12cd\n", seedUsername, ownerID, seedPassword)
	return nil
}
