package telegram

import (
	"strings"
	"testing"

	"github.com/aliskhannn/english-level-bot/internal/service"
)

func TestFormatTimerBar(t *testing.T) {
	tests := []struct {
		name       string
		remaining  int
		total      int
		wantFilled int
	}{
		{"full", 10, 10, 10},
		{"half", 5, 10, 5},
		{"never empty while running", 1, 30, 1},
		{"never overflows", 12, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTimer(tt.remaining, tt.total)
			if n := strings.Count(got, "🟩"); n != tt.wantFilled {
				t.Errorf("filled cells = %d, want %d (%s)", n, tt.wantFilled, got)
			}
			if n := strings.Count(got, "🟩") + strings.Count(got, "⬜"); n != timerBarCells {
				t.Errorf("bar width = %d, want %d", n, timerBarCells)
			}
		})
	}

	if got := formatTimer(0, 10); strings.Contains(got, "🟩") {
		t.Errorf("expired timer still shows a bar: %s", got)
	}
}

func TestFormatFeedbackVariants(t *testing.T) {
	timedOut := formatFeedback(service.FeedbackView{
		TimedOut:      true,
		CorrectLetter: "B",
		CorrectOption: "went",
	})
	if !strings.Contains(timedOut, "VAQT TUGADI") || !strings.Contains(timedOut, "B. went") {
		t.Errorf("timeout feedback must reveal the correct answer: %s", timedOut)
	}

	wrong := formatFeedback(service.FeedbackView{
		ChosenLetter:  "A",
		ChosenOption:  "goed",
		CorrectLetter: "B",
		CorrectOption: "went",
		Explanation:   "Oʻtgan zamon",
	})
	for _, want := range []string{"NOTOʻGʻRI", "A. goed", "B. went", "Oʻtgan zamon"} {
		if !strings.Contains(wrong, want) {
			t.Errorf("wrong-answer feedback missing %q: %s", want, wrong)
		}
	}

	correct := formatFeedback(service.FeedbackView{
		WasCorrect:    true,
		ChosenLetter:  "B",
		ChosenOption:  "went",
		CorrectLetter: "B",
		CorrectOption: "went",
	})
	if !strings.Contains(correct, "TOʻGʻRI JAVOB") || strings.Contains(correct, "NOTOʻGʻRI") {
		t.Errorf("unexpected correct-answer feedback: %s", correct)
	}
}

func TestFormatQuestionIncludesPassage(t *testing.T) {
	view := service.QuestionView{
		Index:   0,
		Total:   3,
		Prompt:  "What did she do?",
		Passage: "She went to the market.",
		Options: []string{"a", "b", "c", "d"},
	}
	got := formatQuestion(view)
	if !strings.Contains(got, view.Passage) {
		t.Errorf("passage missing: %s", got)
	}
	for _, want := range []string{"A) a", "B) b", "C) c", "D) d"} {
		if !strings.Contains(got, want) {
			t.Errorf("option line %q missing: %s", want, got)
		}
	}
}
