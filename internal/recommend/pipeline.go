// Package recommend turns completed quiz answers into a career
// recommendation by calling an external generator and validating its
// output.
//
// Failure policy, in order:
//
//  1. No generator configured → the fixed fallback, immediately, no call.
//     Degraded mode, not an error.
//  2. Generator output that does not decode to the expected shape → the
//     fixed fallback. Malformed output is never surfaced as an error.
//  3. Generator call failure (transport, timeout, quota) → propagated as
//     apperror.ErrExternalService, tagged apperror.ErrRateLimited when the
//     error text carries a resource-exhaustion indicator.
//
// The pipeline keeps no state and performs no retries; callers may safely
// call it again with the same input.
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/model"
)

// Generator is the narrow boundary to the external recommendation service.
// It takes the assembled prompt and returns the raw JSON text the service
// produced. Implementations must not validate the payload; that is the
// pipeline's one decode-and-validate step.
type Generator interface {
	GenerateRecommendation(ctx context.Context, prompt string) (string, error)
}

// rateLimitPattern matches the wording the external generator uses for
// resource exhaustion, so callers can show a friendlier retry message.
var rateLimitPattern = regexp.MustCompile(`(?i)(rate\s*limit|429|too\s*many\s*requests|resource_exhausted|quota)`)

// Pipeline validates quiz answers, drives the generator, and applies the
// fallback policy. A nil generator means no credentials are configured.
type Pipeline struct {
	gen    Generator
	logger *slog.Logger
}

func New(gen Generator, logger *slog.Logger) *Pipeline {
	return &Pipeline{gen: gen, logger: logger}
}

// Available reports whether a generator is configured. UI collaborators use
// this to distinguish degraded mode from a live service.
func (p *Pipeline) Available() bool {
	return p.gen != nil
}

// Recommend produces a CareerRecommendation for the ordered quiz answers.
// The input must be non-empty.
func (p *Pipeline) Recommend(ctx context.Context, answers []model.QuizAnswer) (model.CareerRecommendation, error) {
	if len(answers) == 0 {
		return model.CareerRecommendation{}, apperror.ValidationFailed("answers", "at least one quiz answer is required")
	}

	if p.gen == nil {
		p.logger.Debug("no generator configured, using fallback recommendation")
		return Fallback(), nil
	}

	raw, err := p.gen.GenerateRecommendation(ctx, buildPrompt(answers))
	if err != nil {
		if rateLimitPattern.MatchString(err.Error()) {
			p.logger.Warn("recommendation generator rate limited", slog.String("error", err.Error()))
			return model.CareerRecommendation{}, apperror.RateLimited(err)
		}
		p.logger.Error("recommendation generator call failed", slog.String("error", err.Error()))
		return model.CareerRecommendation{}, apperror.ExternalService(err)
	}

	rec, ok := decodeRecommendation(raw)
	if !ok {
		p.logger.Warn("generator response did not match the recommendation shape, using fallback")
		return Fallback(), nil
	}

	return rec, nil
}

// buildPrompt renders the numbered question/answer list into the request
// prompt. The generator is separately configured to answer in JSON.
func buildPrompt(answers []model.QuizAnswer) string {
	var b strings.Builder
	b.WriteString("Based on the following career quiz answers, please provide a personalized academic stream recommendation for a student.\n")
	b.WriteString("Analyze the answers to identify the student's core interests, skills, and motivations.\n")
	b.WriteString("The recommendation should be encouraging, insightful, and clear.\n")
	b.WriteString("Crucially, provide specific feedback on how the student's answers led to the recommendation.\n\n")
	b.WriteString("Quiz Answers:\n")
	for i, a := range answers {
		fmt.Fprintf(&b, "%d. Question: %q\n   Answer: %q\n", i+1, a.Question, a.Answer)
	}
	b.WriteString("\nPlease return your analysis in the specified JSON format.\n")
	return b.String()
}

// wireRecommendation mirrors the expected response with pointer fields so
// absence and wrong-type are both detectable: a missing field stays nil, a
// field of the wrong JSON type fails to unmarshal.
type wireRecommendation struct {
	RecommendedStream *string   `json:"recommendedStream"`
	Reasoning         *string   `json:"reasoning"`
	SuggestedSubjects *[]string `json:"suggestedSubjects"`
	PotentialCareers  *[]string `json:"potentialCareers"`
	ConfidenceScore   *float64  `json:"confidenceScore"`
	Feedback          string    `json:"feedback"`
}

// decodeRecommendation is the single decode-and-validate step. It returns
// ok=false for anything that is not a JSON object with the five required
// fields in the right shapes; the caller substitutes the fallback.
func decodeRecommendation(raw string) (model.CareerRecommendation, bool) {
	var wire wireRecommendation
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &wire); err != nil {
		return model.CareerRecommendation{}, false
	}

	if wire.RecommendedStream == nil || *wire.RecommendedStream == "" ||
		wire.Reasoning == nil || *wire.Reasoning == "" ||
		wire.SuggestedSubjects == nil ||
		wire.PotentialCareers == nil ||
		wire.ConfidenceScore == nil {
		return model.CareerRecommendation{}, false
	}

	return model.CareerRecommendation{
		RecommendedStream: *wire.RecommendedStream,
		Reasoning:         *wire.Reasoning,
		SuggestedSubjects: *wire.SuggestedSubjects,
		PotentialCareers:  *wire.PotentialCareers,
		ConfidenceScore:   *wire.ConfidenceScore,
		Feedback:          wire.Feedback,
	}, true
}
