package model

import "time"

// QuizQuestion is one entry in the career quiz question bank.
type QuizQuestion struct {
	ID         int      `json:"id"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"` // Easy, Medium, Hard
}

// QuizAnswer pairs a question with the option the student chose. The
// recommendation pipeline consumes an ordered, non-empty list of these.
type QuizAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// CareerRecommendation is the value produced by the recommendation
// pipeline. It has no identity and is never mutated after creation.
type CareerRecommendation struct {
	RecommendedStream string   `json:"recommendedStream"`
	Reasoning         string   `json:"reasoning"`
	SuggestedSubjects []string `json:"suggestedSubjects"`
	PotentialCareers  []string `json:"potentialCareers"`
	ConfidenceScore   float64  `json:"confidenceScore"` // in [0,1]
	Feedback          string   `json:"feedback,omitempty"`
}

// QuizResult records one completed quiz run. Immutable once created;
// appended to User.QuizHistory and never changed afterwards.
type QuizResult struct {
	Date           time.Time            `json:"date"`
	Answers        []QuizAnswer         `json:"answers"`
	Recommendation CareerRecommendation `json:"recommendation"`
}

// Clone returns a deep copy of the result.
func (r QuizResult) Clone() QuizResult {
	c := r
	if r.Answers != nil {
		c.Answers = append([]QuizAnswer(nil), r.Answers...)
	}
	c.Recommendation = r.Recommendation.Clone()
	return c
}

// Clone returns a deep copy of the recommendation.
func (cr CareerRecommendation) Clone() CareerRecommendation {
	c := cr
	if cr.SuggestedSubjects != nil {
		c.SuggestedSubjects = append([]string(nil), cr.SuggestedSubjects...)
	}
	if cr.PotentialCareers != nil {
		c.PotentialCareers = append([]string(nil), cr.PotentialCareers...)
	}
	return c
}
