package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseGenerated_StripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"title\":\"Pasta\",\"description\":\"x\",\"cooking_time\":\"20 mins\",\"difficulty\":\"Easy\",\"ingredients\":[\"Pasta\"],\"instructions\":[\"Boil\"],\"macros\":{\"calories\":\"300\"}}\n```"

	r, err := ParseGenerated(raw)
	assert.NoError(t, err)
	assert.Equal(t, "Pasta", r.Title)
	assert.Equal(t, "20 mins", r.CookingTime)
	assert.Equal(t, "Easy", r.Difficulty)
	assert.Equal(t, []string{"Pasta"}, r.Ingredients)
	assert.Equal(t, []string{"Boil"}, r.Instructions)
	assert.Equal(t, "300", r.Macros["calories"])
}

func TestParseGenerated_BareJSON(t *testing.T) {
	raw := `{"title":"Soup","description":"warm","cooking_time":"10 mins","difficulty":"Easy","ingredients":["Water","Salt"],"instructions":["Boil water","Add salt"],"macros":{"calories":"5 kcal"}}`

	r, err := ParseGenerated(raw)
	assert.NoError(t, err)
	assert.Equal(t, "Soup", r.Title)
	assert.Len(t, r.Ingredients, 2)
}

func TestParseGenerated_MalformedJSON(t *testing.T) {
	r, err := ParseGenerated("Sure! Here is a recipe for you.")
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestParseGenerated_SchemaViolation(t *testing.T) {
	// Missing title and instructions.
	raw := `{"description":"x","cooking_time":"20 mins","difficulty":"Easy","ingredients":["Pasta"],"macros":{}}`

	r, err := ParseGenerated(raw)
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestParseGenerated_EmptyIngredients(t *testing.T) {
	raw := `{"title":"Nothing","description":"x","cooking_time":"0 mins","difficulty":"Easy","ingredients":[],"instructions":["Do nothing"],"macros":{"calories":"0"}}`

	r, err := ParseGenerated(raw)
	assert.Error(t, err)
	assert.Nil(t, r)
}

func TestEnsureIdentity(t *testing.T) {
	r := &Recipe{Title: "Pasta"}
	r.EnsureIdentity()
	assert.NotEmpty(t, r.ID)
	assert.False(t, r.CreatedAt.IsZero())

	// Existing identity is preserved.
	id, created := r.ID, r.CreatedAt
	r.EnsureIdentity()
	assert.Equal(t, id, r.ID)
	assert.Equal(t, created, r.CreatedAt)
}

func TestGenerationPrompt_EmbedsIngredients(t *testing.T) {
	prompt := GenerationPrompt([]string{"Tomato", "Basil"})
	assert.Contains(t, prompt, "Tomato, Basil")
	assert.Contains(t, prompt, "valid JSON object")

	// Deterministic for the same input.
	assert.Equal(t, prompt, GenerationPrompt([]string{"Tomato", "Basil"}))
}
