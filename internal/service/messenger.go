package service

import "github.com/aliskhannn/english-level-bot/internal/domain/entities"

// QuestionView is the effect payload for displaying a question.
type QuestionView struct {
	Index   int // 0-based question index
	Total   int
	Prompt  string
	Passage string // non-empty for reading questions
	Options []string
}

// FeedbackView is the effect payload for the post-answer feedback screen.
// TimedOut means the user made no selection before the countdown expired;
// the correct answer is still revealed.
type FeedbackView struct {
	WasCorrect    bool
	TimedOut      bool
	ChosenLetter  string
	ChosenOption  string
	CorrectLetter string
	CorrectOption string
	Explanation   string
}

// Messenger is the port through which the quiz core talks to the chat
// transport. Implementations return opaque message ids so the core can ask
// for later edits and deletions; the core treats every returned error as
// cosmetic and never lets one abort a state transition.
type Messenger interface {
	ShowQuestion(chatID int64, view QuestionView) (int, error)
	ShowTimer(chatID int64, remaining, total int) (int, error)
	UpdateTimer(chatID int64, messageID, remaining, total int) error
	ShowFeedback(chatID int64, view FeedbackView) (int, error)
	ShowResults(chatID int64, result entities.QuizResult) error
	ShowPausedControls(chatID int64, messageID int) error
	DeleteMessage(chatID int64, messageID int) error
}
