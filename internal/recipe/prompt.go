package recipe

import (
	"fmt"
	"strings"
)

const promptTemplate = `You are a professional chef. I have these ingredients: %s.

Create a delicious recipe using these ingredients. You may assume I have basic pantry items (salt, pepper, oil, water).

CRITICAL INSTRUCTION: You must respond ONLY with a valid JSON object. Do not use Markdown formatting (no ` + "```json or ```" + `).

The JSON must strictly follow this structure:
{
    "title": "Recipe Name",
    "description": "A short, mouth-watering description.",
    "cooking_time": "e.g., 20 mins",
    "difficulty": "Easy/Medium/Hard",
    "ingredients": ["List", "of", "quantified", "ingredients"],
    "instructions": ["Step 1...", "Step 2...", "Step 3..."],
    "macros": {
        "calories": "e.g., 350 kcal",
        "protein": "e.g., 12g"
    }
}`

// GenerationPrompt builds the deterministic chef instruction for a candidate
// ingredient list. It lives next to ParseGenerated so the schema the model is
// asked for and the schema the response is validated against stay in sync.
func GenerationPrompt(ingredients []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(ingredients, ", "))
}
