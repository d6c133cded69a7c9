package models

// MaxScore is the score of a fully correct quiz: four questions worth ten points each.
const (
	PointsPerQuestion = 10
	QuestionCount     = 4
	MaxScore          = PointsPerQuestion * QuestionCount
	PassPercent       = 50
)

// Question is what a participant sees. The correct option is not included.
type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Quiz is an issued set of questions.
type Quiz struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// Answer pairs a question id with an option text.
type Answer struct {
	QuestionID string `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// AnswerKey holds the correct option per question of one quiz.
type AnswerKey struct {
	QuizID  string   `json:"quiz_id"`
	Answers []Answer `json:"answers"`
}

// Session is the in-flight join state of one participant.
type Session struct {
	GiveawayID    string `json:"giveaway_id"`
	QuizID        string `json:"quiz_id"`
	AccountNumber string `json:"account_number"`
}

// Result is the outcome of scoring a submission.
type Result struct {
	Score   int  `json:"score"`
	Percent int  `json:"percent"`
	Passed  bool `json:"passed"`
}
