package recommend

import "github.com/yogendram/career-compass/internal/model"

// Fallback returns the fixed safe recommendation used when no generator is
// configured or when the generator's output fails validation. Each call
// returns a fresh copy so callers can't alias the slices.
func Fallback() model.CareerRecommendation {
	return model.CareerRecommendation{
		RecommendedStream: "Science",
		Reasoning: "Based on your logical problem-solving approach and interest in how things work, " +
			"the Science stream is a great fit. It opens doors to fields like engineering and research " +
			"where your analytical skills can shine. (This is a sample recommendation as the AI service " +
			"is currently unavailable.)",
		SuggestedSubjects: []string{"Physics", "Chemistry", "Mathematics", "Computer Science"},
		PotentialCareers:  []string{"Software Engineer", "Data Scientist", "Research Scientist", "Mechanical Engineer"},
		ConfidenceScore:   0.85,
		Feedback: "Your preference for 'Solving puzzles' and subjects like 'Mathematics or Physics' " +
			"strongly indicated a good fit for the analytical and logical reasoning required in the " +
			"Science stream.",
	}
}
