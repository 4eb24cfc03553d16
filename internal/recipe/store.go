package recipe

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store defines the interface for recipe persistence operations.
type Store interface {
	Save(ctx context.Context, recipe *Recipe) (string, error)
	ListAll(ctx context.Context) ([]*Recipe, error)
	FindByImageHash(ctx context.Context, imageHash string) (*Recipe, error)
	Close() error
}

// PostgresStore implements the Store interface for PostgreSQL. Recipes are
// kept as single-table documents with the nested fields stored as JSONB.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects to the database (sqlx.Connect pings) and ensures
// the recipes table exists.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		cooking_time TEXT,
		difficulty TEXT,
		ingredients JSONB,
		instructions JSONB,
		macros JSONB,
		image_hash TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		user_id TEXT
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create recipes table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Save validates the recipe, assigns identity if missing and inserts it as a
// document. The assigned id is returned as a plain string.
func (s *PostgresStore) Save(ctx context.Context, recipe *Recipe) (string, error) {
	if err := recipe.Validate(); err != nil {
		return "", err
	}
	recipe.EnsureIdentity()

	ingredientsJSON, err := json.Marshal(recipe.Ingredients)
	if err != nil {
		return "", fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	instructionsJSON, err := json.Marshal(recipe.Instructions)
	if err != nil {
		return "", fmt.Errorf("failed to marshal instructions: %w", err)
	}
	macrosJSON, err := json.Marshal(recipe.Macros)
	if err != nil {
		return "", fmt.Errorf("failed to marshal macros: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO recipes (id, title, description, cooking_time, difficulty, ingredients, instructions, macros, image_hash, created_at, user_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		recipe.ID,
		recipe.Title,
		recipe.Description,
		recipe.CookingTime,
		recipe.Difficulty,
		ingredientsJSON,
		instructionsJSON,
		macrosJSON,
		recipe.ImageHash,
		recipe.CreatedAt,
		recipe.UserID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to save recipe: %w", err)
	}

	return recipe.ID, nil
}

// ListAll returns every stored recipe in creation order. An empty store yields
// an empty slice, not nil, so callers serialize it as an empty JSON array.
func (s *PostgresStore) ListAll(ctx context.Context) ([]*Recipe, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, title, description, cooking_time, difficulty, ingredients, instructions, macros, image_hash, created_at, user_id FROM recipes ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []*Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return recipes, nil
}

// FindByImageHash returns the most recent recipe generated for a
// byte-identical image, or nil when none exists.
func (s *PostgresStore) FindByImageHash(ctx context.Context, imageHash string) (*Recipe, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT id, title, description, cooking_time, difficulty, ingredients, instructions, macros, image_hash, created_at, user_id FROM recipes WHERE image_hash = $1 ORDER BY created_at DESC LIMIT 1",
		imageHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe by hash: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to get recipe by hash: %w", err)
		}
		return nil, nil
	}
	return scanRecipe(rows)
}

// Close releases the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func scanRecipe(rows *sqlx.Rows) (*Recipe, error) {
	var r Recipe
	var ingredientsJSON, instructionsJSON, macrosJSON []byte
	var description, userID sql.NullString

	err := rows.Scan(
		&r.ID,
		&r.Title,
		&description,
		&r.CookingTime,
		&r.Difficulty,
		&ingredientsJSON,
		&instructionsJSON,
		&macrosJSON,
		&r.ImageHash,
		&r.CreatedAt,
		&userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recipe row: %w", err)
	}
	r.Description = description.String
	r.UserID = userID.String

	if err := json.Unmarshal(ingredientsJSON, &r.Ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
	}
	if err := json.Unmarshal(instructionsJSON, &r.Instructions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal instructions: %w", err)
	}
	if err := json.Unmarshal(macrosJSON, &r.Macros); err != nil {
		return nil, fmt.Errorf("failed to unmarshal macros: %w", err)
	}

	return &r, nil
}
