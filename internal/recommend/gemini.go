package recommend

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// recommendationSchema constrains the generator to the exact
// CareerRecommendation shape. The model is asked for application/json with
// this schema; the pipeline still validates the result.
var recommendationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recommendedStream": {
			Type:        genai.TypeString,
			Description: "The academic stream recommended for the student (e.g., Science, Commerce, Arts, Vocational).",
		},
		"reasoning": {
			Type:        genai.TypeString,
			Description: "A detailed, encouraging explanation for why this stream is recommended based on the quiz answers.",
		},
		"suggestedSubjects": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of key subjects within the recommended stream that the student might excel at or enjoy.",
		},
		"potentialCareers": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of potential career paths that align with the recommended stream and the student's interests.",
		},
		"confidenceScore": {
			Type:        genai.TypeNumber,
			Description: "A score between 0 and 1 indicating the confidence in this recommendation.",
		},
		"feedback": {
			Type: genai.TypeString,
			Description: "Constructive feedback explaining how specific quiz answers influenced the recommendation. " +
				"This should be a single paragraph.",
		},
	},
	Required: []string{"recommendedStream", "reasoning", "suggestedSubjects", "potentialCareers", "confidenceScore", "feedback"},
}

// GeminiGenerator implements Generator over the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator bound to the given API key and
// model. Callers that have no key should construct the pipeline with a nil
// generator instead.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("recommend: Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("recommend: creating Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

// GenerateRecommendation sends the prompt and returns the model's raw JSON
// text. Call errors come back verbatim for the pipeline to classify.
func (g *GeminiGenerator) GenerateRecommendation(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   recommendationSchema,
			Temperature:      genai.Ptr[float32](0.7),
		},
	)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.Text()), nil
}

// Client exposes the underlying Gemini client so other Gemini-backed
// features (the advisor chat) can share one connection.
func (g *GeminiGenerator) Client() *genai.Client {
	return g.client
}
