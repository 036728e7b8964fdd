// Package quiz holds the career quiz question bank.
//
// The bank starts from a built-in seed and may be edited by administrators.
// Edits are written through to the store under store.KeyQuizBank before they
// return, the same discipline the registry applies to its user list.
package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/yogendram/career-compass/internal/apperror"
	"github.com/yogendram/career-compass/internal/model"
	"github.com/yogendram/career-compass/internal/store"
)

var seedQuestions = []model.QuizQuestion{
	{
		ID:       1,
		Question: "Which of these activities do you enjoy the most in your free time?",
		Options: []string{
			"Solving puzzles or playing strategy games",
			"Reading, writing, or debating",
			"Creating art, music, or performing",
			"Organizing events or leading a team",
		},
		Difficulty: "Easy",
	},
	{
		ID:       2,
		Question: "Which school subject are you most passionate about?",
		Options: []string{
			"Mathematics or Physics",
			"History or Literature",
			"Art or Music",
			"Economics or Business Studies",
		},
		Difficulty: "Easy",
	},
	{
		ID:       3,
		Question: "How do you prefer to solve problems?",
		Options: []string{
			"Through logical, step-by-step analysis",
			"By understanding different perspectives and finding a middle ground",
			"By thinking outside the box and trying new, creative approaches",
			"By collaborating with others and delegating tasks",
		},
		Difficulty: "Medium",
	},
	{
		ID:       4,
		Question: "What kind of work environment do you envision for yourself?",
		Options: []string{
			"A research lab or a tech company with a focus on innovation",
			"A library, a government office, or a non-profit organization",
			"A creative studio, a theater, or a design firm",
			"A corporate office with a clear structure and growth path",
		},
		Difficulty: "Medium",
	},
	{
		ID:       5,
		Question: "What motivates you more?",
		Options: []string{
			"Understanding how things work and discovering new principles",
			"Helping people and making a positive impact on society",
			"Expressing your ideas and emotions to an audience",
			"Achieving financial success and building a successful enterprise",
		},
		Difficulty: "Hard",
	},
}

func validDifficulty(d string) bool {
	return d == "Easy" || d == "Medium" || d == "Hard"
}

// Bank is the editable question list, mirrored in the store under
// store.KeyQuizBank. All methods are safe for concurrent use.
type Bank struct {
	store  *store.Store
	logger *slog.Logger

	mu        sync.Mutex
	questions []model.QuizQuestion
}

// NewBank loads the question bank from the store. A missing document yields
// the built-in seed; the seed is only persisted once an edit happens.
func NewBank(ctx context.Context, st *store.Store, logger *slog.Logger) (*Bank, error) {
	b := &Bank{store: st, logger: logger}

	var questions []model.QuizQuestion
	ok, err := st.Get(ctx, store.KeyQuizBank, &questions)
	if err != nil {
		return nil, fmt.Errorf("quiz: loading question bank: %w", err)
	}
	if ok {
		b.questions = questions
	} else {
		b.questions = cloneQuestions(seedQuestions)
	}

	return b, nil
}

func (b *Bank) persist(ctx context.Context) error {
	if err := b.store.Set(ctx, store.KeyQuizBank, b.questions); err != nil {
		return fmt.Errorf("quiz: persisting question bank: %w", err)
	}
	return nil
}

func validateQuestion(q model.QuizQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return apperror.ValidationFailed("question", "question text is required")
	}
	if len(q.Options) < 2 {
		return apperror.ValidationFailed("options", "at least two options are required")
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return apperror.ValidationFailed("options", "options must not be blank")
		}
	}
	if !validDifficulty(q.Difficulty) {
		return apperror.ValidationFailed("difficulty", "difficulty must be Easy, Medium, or Hard")
	}
	return nil
}

// Questions returns the bank in presentation order, deep-copied.
func (b *Bank) Questions() []model.QuizQuestion {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneQuestions(b.questions)
}

// AddQuestion appends a new question. The id is assigned here; an empty
// difficulty defaults to Easy.
func (b *Bank) AddQuestion(ctx context.Context, q model.QuizQuestion) (model.QuizQuestion, error) {
	if q.Difficulty == "" {
		q.Difficulty = "Easy"
	}
	if err := validateQuestion(q); err != nil {
		return model.QuizQuestion{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	q.ID = b.nextID()
	q.Question = strings.TrimSpace(q.Question)
	q.Options = append([]string(nil), q.Options...)

	b.questions = append(b.questions, q)
	if err := b.persist(ctx); err != nil {
		return model.QuizQuestion{}, err
	}

	b.logger.Info("quiz question added", slog.Int("questionID", q.ID))
	return q, nil
}

// UpdateQuestion replaces the text, options, and difficulty of the question
// with the given id.
func (b *Bank) UpdateQuestion(ctx context.Context, id int, q model.QuizQuestion) (model.QuizQuestion, error) {
	if err := validateQuestion(q); err != nil {
		return model.QuizQuestion{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return model.QuizQuestion{}, apperror.NotFound("quiz question", fmt.Sprint(id))
	}

	q.ID = id
	q.Question = strings.TrimSpace(q.Question)
	q.Options = append([]string(nil), q.Options...)

	b.questions[idx] = q
	if err := b.persist(ctx); err != nil {
		return model.QuizQuestion{}, err
	}

	return q, nil
}

// DeleteQuestion removes the question with the given id.
func (b *Bank) DeleteQuestion(ctx context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOf(id)
	if idx < 0 {
		return apperror.NotFound("quiz question", fmt.Sprint(id))
	}

	b.questions = append(b.questions[:idx], b.questions[idx+1:]...)
	if err := b.persist(ctx); err != nil {
		return err
	}

	b.logger.Info("quiz question deleted", slog.Int("questionID", id))
	return nil
}

// nextID is one past the highest id in the current list. Questions carry no
// cross-references, so recycling the id of a deleted question is harmless.
func (b *Bank) nextID() int {
	max := 0
	for _, q := range b.questions {
		if q.ID > max {
			max = q.ID
		}
	}
	return max + 1
}

func (b *Bank) indexOf(id int) int {
	for i := range b.questions {
		if b.questions[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneQuestions(qs []model.QuizQuestion) []model.QuizQuestion {
	out := make([]model.QuizQuestion, len(qs))
	for i, q := range qs {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}
