package entities

import "testing"

func TestTierBands(t *testing.T) {
	tests := []struct {
		percent   int
		wantEmoji string
	}{
		{100, "🏆"},
		{90, "🏆"},
		{89, "⭐"},
		{75, "⭐"},
		{74, "✅"},
		{60, "✅"},
		{59, "📖"},
		{40, "📖"},
		{39, "🎯"},
		{0, "🎯"},
	}
	for _, tt := range tests {
		if got := TierFor(tt.percent); got.Emoji != tt.wantEmoji {
			t.Errorf("TierFor(%d).Emoji = %s, want %s", tt.percent, got.Emoji, tt.wantEmoji)
		}
	}
}

func TestPercentRounds(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{2, 3, 67},
		{1, 3, 33},
		{3, 3, 100},
		{0, 3, 0},
		{1, 2, 50},
		{5, 6, 83},
		{0, 0, 0},
	}
	for _, tt := range tests {
		s := &QuizSession{CorrectAnswers: tt.correct, TotalQuestions: tt.total}
		if got := s.Percent(); got != tt.want {
			t.Errorf("Percent(%d/%d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}

func TestLetterIndex(t *testing.T) {
	tests := []struct {
		letter string
		want   int
	}{
		{"A", 0},
		{"B", 1},
		{"C", 2},
		{"D", 3},
		{"E", -1},
		{"", -1},
		{"AB", -1},
	}
	for _, tt := range tests {
		if got := LetterIndex(tt.letter); got != tt.want {
			t.Errorf("LetterIndex(%q) = %d, want %d", tt.letter, got, tt.want)
		}
	}
}
