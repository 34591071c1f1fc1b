package label

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseLabelJSON extracts the label suggestion from a model response,
// tolerating markdown fences and surrounding prose.
func parseLabelJSON(text string) (*ProductLabel, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[start : end+1]

	var lbl ProductLabel
	if err := json.Unmarshal([]byte(text), &lbl); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	lbl.Name = strings.TrimSpace(lbl.Name)
	if lbl.Name == "" {
		return nil, fmt.Errorf("response contains no product name")
	}
	if lbl.Price < 0 {
		lbl.Price = 0
	}
	return &lbl, nil
}
