// Package advisor provides the Guidance AI chat: a Gemini chat session
// primed with a student-counselor system instruction.
//
// The advisor is optional: without Gemini credentials it is simply absent,
// and the HTTP layer reports the feature as unavailable. Call failures use
// the same classification as the recommendation pipeline so rate limiting
// gets the friendlier wording.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"google.golang.org/genai"

	"github.com/yogendram/career-compass/internal/apperror"
)

const systemInstruction = "You are a friendly and helpful student guidance counselor AI. " +
	"Your name is Guidance AI. You assist students with questions about career paths, " +
	"college selection, study tips, and personal development. Keep your answers concise, " +
	"encouraging, and easy to understand."

// Greeting opens every chat session.
const Greeting = "Hello! I am Guidance AI. How can I help you today? " +
	"Feel free to ask me about careers, colleges, or study advice."

var rateLimitPattern = regexp.MustCompile(`(?i)(rate\s*limit|429|too\s*many\s*requests|resource_exhausted|quota)`)

// Advisor creates chat sessions against a shared Gemini client.
type Advisor struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func New(client *genai.Client, model string, logger *slog.Logger) *Advisor {
	return &Advisor{client: client, model: model, logger: logger}
}

// Session is one running conversation. The Gemini chat keeps the history;
// the session is not safe for concurrent Send calls.
type Session struct {
	chat   *genai.Chat
	logger *slog.Logger
}

// NewSession starts a conversation primed with the counselor instruction.
func (a *Advisor) NewSession(ctx context.Context) (*Session, error) {
	chat, err := a.client.Chats.Create(ctx, a.model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("advisor: creating chat session: %w", err)
	}
	return &Session{chat: chat, logger: a.logger}, nil
}

// Send delivers one user message and returns the counselor's reply.
func (s *Session) Send(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "", apperror.ValidationFailed("message", "message must not be empty")
	}

	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		if rateLimitPattern.MatchString(err.Error()) {
			s.logger.Warn("advisor chat rate limited", slog.String("error", err.Error()))
			return "", apperror.RateLimited(err)
		}
		s.logger.Error("advisor chat call failed", slog.String("error", err.Error()))
		return "", apperror.ExternalService(err)
	}

	return resp.Text(), nil
}
