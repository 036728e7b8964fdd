// Package model defines the data structures used throughout the application.
package model

// Role classifies an account. Students own quiz history and applications;
// admins manage the registry; counselors are read-mostly accounts created by
// admins.
type Role string

const (
	RoleStudent   Role = "student"
	RoleAdmin     Role = "admin"
	RoleCounselor Role = "counselor"
)

// AcademicLevel is the student's current stage of education.
type AcademicLevel string

const (
	LevelHighSchool    AcademicLevel = "High School"
	LevelUndergraduate AcademicLevel = "Undergraduate"
	LevelPostgraduate  AcademicLevel = "Postgraduate"
)

// LearningStyle is the student's self-reported preference.
type LearningStyle string

const (
	StyleVisual         LearningStyle = "Visual"
	StyleAuditory       LearningStyle = "Auditory"
	StyleReadingWriting LearningStyle = "Reading/Writing"
	StyleKinesthetic    LearningStyle = "Kinesthetic"
)

// LearningStyles lists every valid LearningStyle, in display order.
var LearningStyles = []LearningStyle{
	StyleVisual,
	StyleAuditory,
	StyleReadingWriting,
	StyleKinesthetic,
}

// ApplicationStatus tracks where a college application stands.
type ApplicationStatus string

const (
	StatusPlanning   ApplicationStatus = "Planning to Apply"
	StatusApplied    ApplicationStatus = "Applied"
	StatusAccepted   ApplicationStatus = "Accepted"
	StatusRejected   ApplicationStatus = "Rejected"
	StatusWaitlisted ApplicationStatus = "Waitlisted"
)

// Progress holds the per-user counters shown on the dashboard.
// CollegesSearched and RecommendationsViewed never decrease.
type Progress struct {
	QuizCompleted         bool `json:"quizCompleted"`
	CollegesSearched      int  `json:"collegesSearched"`
	RecommendationsViewed int  `json:"recommendationsViewed"`
}

// NotificationSettings holds two independent email toggles.
type NotificationSettings struct {
	EmailOnNewRecommendation   bool `json:"emailOnNewRecommendation"`
	EmailOnApplicationDeadline bool `json:"emailOnApplicationDeadline"`
}

// CollegeApplication is one entry in a user's application tracker. It is
// owned by exactly one user and carries an id unique within that user's
// application list.
type CollegeApplication struct {
	ID          string            `json:"id"`
	CollegeName string            `json:"collegeName"`
	Status      ApplicationStatus `json:"status"`
	Deadline    string            `json:"deadline,omitempty"` // ISO date, optional
	Notes       string            `json:"notes,omitempty"`
}

// User is a registry entry. Email is unique across the registry when
// compared case-insensitively. QuizHistory is append-only: entries are never
// reordered, mutated, or removed.
//
// PasswordHash is a bcrypt hash, empty for accounts registered without a
// password (such accounts authenticate by email + verification state only).
// It round-trips through the persistent store but must never be returned
// over HTTP; handlers respond with Sanitized copies.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Verified     bool   `json:"verified"`
	PasswordHash string `json:"passwordHash,omitempty"`

	Avatar        string        `json:"avatar,omitempty"`
	AcademicLevel AcademicLevel `json:"academicLevel,omitempty"`
	Interests     []string      `json:"interests,omitempty"`
	AcademicGoals string        `json:"academicGoals"`
	LearningStyle LearningStyle `json:"learningStyle"`

	NotificationSettings NotificationSettings `json:"notificationSettings"`
	Progress             Progress             `json:"progress"`
	Applications         []CollegeApplication `json:"applications"`
	QuizHistory          []QuizResult         `json:"quizHistory"`
}

// Clone returns a deep copy. Registry and session each hold their own copy
// of a user, so mutations go through explicit updates instead of shared
// slices.
func (u User) Clone() User {
	c := u
	if u.Interests != nil {
		c.Interests = append([]string(nil), u.Interests...)
	}
	if u.Applications != nil {
		c.Applications = append([]CollegeApplication(nil), u.Applications...)
	}
	if u.QuizHistory != nil {
		c.QuizHistory = make([]QuizResult, len(u.QuizHistory))
		for i, r := range u.QuizHistory {
			c.QuizHistory[i] = r.Clone()
		}
	}
	return c
}

// Sanitized returns a copy safe to serialize in an HTTP response.
func (u User) Sanitized() User {
	c := u.Clone()
	c.PasswordHash = ""
	return c
}
