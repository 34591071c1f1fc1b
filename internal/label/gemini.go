package label

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tdstore/pos-scanner/internal/imaging"
)

// productLabelPrompt asks for strict JSON so the response survives the
// parser without heuristics.
const productLabelPrompt = `You are looking at a photo of a retail product or its shelf label. Extract:

1. **Product Name**: the product's printed name, including brand when visible.
2. **Price**: the shelf or sticker price when one is visible in the photo. Extract only the numeric value.

Return ONLY valid JSON in this exact format:
{
  "name": "Product Name",
  "price": 0.00
}

Important:
- The price must be a number (not a string); use 0 when no price is visible
- Do not include any text before or after the JSON
- Do not use markdown code blocks`

// Gemini implements Labeler using Google Gemini.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini Labeler.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// SuggestLabel implements Labeler.
func (g *Gemini) SuggestLabel(imageData []byte, contentType string) (*ProductLabel, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pngData, _, err := imaging.ToPNG(imageData, contentType)
	if err != nil {
		return nil, err
	}

	parts := []genai.Part{
		genai.ImageData("png", pngData),
		genai.Text(productLabelPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	lbl, err := parseLabelJSON(text.String())
	if err != nil {
		return nil, fmt.Errorf("parsing label suggestion: %w", err)
	}
	return lbl, nil
}

// Close implements Labeler.
func (g *Gemini) Close() error {
	return g.client.Close()
}
