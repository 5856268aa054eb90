// README: Gemini-backed urgency classifier.
package triage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClassifier implements Classifier using Google's Gemini models.
type GeminiClassifier struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiClassifier(ctx context.Context, apiKey string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	// classification, not prose
	model.SetTemperature(0.1)
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	return &GeminiClassifier{client: client, model: model}, nil
}

func (g *GeminiClassifier) Close() {
	g.client.Close()
}

func (g *GeminiClassifier) Classify(ctx context.Context, in Input) (Assessment, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(in.text()))
	if err != nil {
		return Assessment{}, fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Assessment{}, errors.New("no response candidates from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return parseAssessment(text.String())
}

const systemPrompt = `Role: You triage crime reports submitted by citizens to a police dispatch system in India.

Classify how urgently a police station should respond:
- "high": violence in progress, weapons, threat to life, missing child, sexual assault, fire, or a suspect still at the scene.
- "medium": recent crimes with identifiable suspects or evidence at risk (theft just happened, ongoing harassment).
- "low": past incidents, property crime without suspects, noise, or information-only reports.

If the text is "Missing Info" or too vague to judge, answer "low".

Output JSON Schema:
{
  "priority": "low" | "medium" | "high",
  "reason": "string (one short sentence)"
}
`
