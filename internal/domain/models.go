package domain

import "time"

// Option labels for the four choices of a question.
const (
	OptionA = "A"
	OptionB = "B"
	OptionC = "C"
	OptionD = "D"
)

// ValidLabel reports whether label names one of the four options.
func ValidLabel(label string) bool {
	switch label {
	case OptionA, OptionB, OptionC, OptionD:
		return true
	}
	return false
}

// Question is a multiple-choice question with exactly one correct option.
// The correct label never leaves the server before grading.
type Question struct {
	ID            int64  `json:"id"`
	Prompt        string `json:"question"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectAnswer string `json:"-"`
}

// Summary strips the answer key for delivery to clients.
func (q Question) Summary() QuestionSummary {
	return QuestionSummary{
		ID:      q.ID,
		Prompt:  q.Prompt,
		OptionA: q.OptionA,
		OptionB: q.OptionB,
		OptionC: q.OptionC,
		OptionD: q.OptionD,
	}
}

// QuestionSummary is a question as presented to a quiz taker, answer key withheld.
type QuestionSummary struct {
	ID      int64  `json:"id"`
	Prompt  string `json:"question"`
	OptionA string `json:"option_a"`
	OptionB string `json:"option_b"`
	OptionC string `json:"option_c"`
	OptionD string `json:"option_d"`
}

// Option returns the text of the option carrying the given label.
func (q QuestionSummary) Option(label string) string {
	switch label {
	case OptionA:
		return q.OptionA
	case OptionB:
		return q.OptionB
	case OptionC:
		return q.OptionC
	case OptionD:
		return q.OptionD
	}
	return ""
}

// Attempt is the persisted outcome of one completed quiz submission.
// Records are append-only; there is no update or delete path.
type Attempt struct {
	ID             int64
	UserName       string
	Score          int
	TotalQuestions int
	TimeTaken      *int // seconds, nil when the client did not report it
	CompletedAt    time.Time
}

// LeaderboardEntry is a read projection of an Attempt.
type LeaderboardEntry struct {
	UserName       string    `json:"user_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Leaderboard is the ranked top slice of attempts, score descending then
// earliest completion first.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Stats aggregates the attempts log.
type Stats struct {
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	HighestScore  int     `json:"highest_score"`
	UniqueUsers   int     `json:"unique_users"`
}

// GradeResult summarizes a graded submission.
type GradeResult struct {
	Score      int   `json:"score"`
	Total      int   `json:"total"`
	Percentage int   `json:"percentage"`
	TimeTaken  *int  `json:"timeTaken"`
	ResultID   int64 `json:"resultId"`
}
