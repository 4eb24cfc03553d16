package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Recipe represents the structure of a generated recipe document.
type Recipe struct {
	ID           string            `json:"id" db:"id"`
	Title        string            `json:"title" db:"title" validate:"required"`
	Description  string            `json:"description" db:"description"`
	CookingTime  string            `json:"cooking_time" db:"cooking_time" validate:"required"`
	Difficulty   string            `json:"difficulty" db:"difficulty" validate:"required"`
	Ingredients  []string          `json:"ingredients" validate:"required,min=1"`
	Instructions []string          `json:"instructions" validate:"required,min=1"`
	Macros       map[string]string `json:"macros" validate:"required"`
	ImageHash    string            `json:"image_hash,omitempty" db:"image_hash"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
	UserID       string            `json:"user_id,omitempty" db:"user_id"`
}

var validate = validator.New()

// Validate checks that all required recipe fields are present.
func (r *Recipe) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid recipe: %w", err)
	}
	return nil
}

// EnsureIdentity assigns a document id and creation timestamp if missing, so
// the id returned to the caller is stable whether or not persistence succeeds.
func (r *Recipe) EnsureIdentity() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

// ParseGenerated parses the raw text returned by a generative service into a
// Recipe. The model is instructed to return bare JSON, but responses are
// treated as untrusted: markdown fences are stripped and the result is
// validated against the schema before being accepted.
func ParseGenerated(raw string) (*Recipe, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var r Recipe
	if err := json.Unmarshal([]byte(cleaned), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe JSON: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}
