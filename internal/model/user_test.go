package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleUser() User {
	return User{
		ID:           "u-1",
		Name:         "Asha",
		Email:        "asha@example.com",
		Role:         RoleStudent,
		PasswordHash: "$2a$04$fakehash",
		Interests:    []string{"coding"},
		Applications: []CollegeApplication{
			{ID: "a-1", CollegeName: "IIT Bombay", Status: StatusApplied},
		},
		QuizHistory: []QuizResult{
			{
				Answers: []QuizAnswer{{Question: "Q1", Answer: "A1"}},
				Recommendation: CareerRecommendation{
					RecommendedStream: "Science",
					SuggestedSubjects: []string{"Physics"},
				},
			},
		},
	}
}

func TestUserClone_IsDeep(t *testing.T) {
	original := sampleUser()
	clone := original.Clone()

	clone.Interests[0] = "mutated"
	clone.Applications[0].Status = StatusRejected
	clone.QuizHistory[0].Answers[0].Answer = "mutated"
	clone.QuizHistory[0].Recommendation.SuggestedSubjects[0] = "mutated"

	assert.Equal(t, "coding", original.Interests[0])
	assert.Equal(t, StatusApplied, original.Applications[0].Status)
	assert.Equal(t, "A1", original.QuizHistory[0].Answers[0].Answer)
	assert.Equal(t, "Physics", original.QuizHistory[0].Recommendation.SuggestedSubjects[0])
}

func TestUserClone_PreservesNilSlices(t *testing.T) {
	clone := User{ID: "u-1"}.Clone()

	assert.Nil(t, clone.Interests)
	assert.Nil(t, clone.Applications)
	assert.Nil(t, clone.QuizHistory)
}

func TestUserSanitized(t *testing.T) {
	original := sampleUser()
	clean := original.Sanitized()

	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "$2a$04$fakehash", original.PasswordHash)
	assert.Equal(t, original.ID, clean.ID)
	assert.Equal(t, original.QuizHistory, clean.QuizHistory)
}
