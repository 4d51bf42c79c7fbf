// internal/ai/synthesis/schema.go
package synthesis

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// planSchema is the strict shape every generated plan must satisfy
// before it is trusted as a TravelPlan. Numeric range rules beyond what
// JSON Schema expresses cleanly (day contiguity, budget arithmetic) are
// enforced separately in synthesizer.go.
const planSchema = `{
  "type": "object",
  "required": ["destination", "durationDays", "budget", "remainingBudget", "weather", "days", "budgetBreakdown", "recommendations"],
  "properties": {
    "destination": {"type": "string", "minLength": 1},
    "durationDays": {"type": "integer", "minimum": 1},
    "budget": {"type": "number"},
    "remainingBudget": {"type": "number"},
    "weather": {
      "type": "object",
      "required": ["temp", "condition"],
      "properties": {
        "temp": {"type": "number"},
        "condition": {"type": "string"}
      }
    },
    "days": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["day", "title", "activities"],
        "properties": {
          "day": {"type": "integer"},
          "title": {"type": "string"},
          "activities": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["type", "description", "cost"],
              "properties": {
                "type": {"type": "string", "enum": ["accommodation", "food", "activity", "transportation"]},
                "description": {"type": "string"},
                "cost": {"type": "number"}
              }
            }
          }
        }
      }
    },
    "budgetBreakdown": {
      "type": "object",
      "required": ["accommodation", "food", "activities", "transportation", "miscellaneous"],
      "properties": {
        "accommodation": {"type": "number"},
        "food": {"type": "number"},
        "activities": {"type": "number"},
        "transportation": {"type": "number"},
        "miscellaneous": {"type": "number"}
      }
    },
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "description", "rating"],
        "properties": {
          "name": {"type": "string"},
          "description": {"type": "string"},
          "rating": {"type": "number"}
        }
      }
    }
  }
}`

var compiledPlanSchema *gojsonschema.Schema

func init() {
	var err error
	compiledPlanSchema, err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(planSchema))
	if err != nil {
		panic(fmt.Sprintf("invalid plan schema: %v", err))
	}
}

// validateSchema runs the raw provider JSON through the plan schema and
// returns the list of violations, empty on success.
func validateSchema(raw string) ([]string, error) {
	result, err := compiledPlanSchema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return violations, nil
}
