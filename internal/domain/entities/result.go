package entities

// Tier is a fixed score band with the closing comment shown on the results
// screen.
type Tier struct {
	Emoji   string
	Comment string
}

var tiers = []struct {
	min  int
	tier Tier
}{
	{90, Tier{"🏆", "Ajoyib natija! Siz haqiqiy professional!"}},
	{75, Tier{"⭐", "Juda yaxshi! Zoʻr!"}},
	{60, Tier{"✅", "Yaxshi natija!"}},
	{40, Tier{"📖", "Oʻrtacha. Yana mashq qiling!"}},
	{0, Tier{"🎯", "Yana oʻqish kerak. Hechqisi yoʻq, davom eting!"}},
}

// TierFor returns the comment tier for a score percentage.
func TierFor(percent int) Tier {
	for _, t := range tiers {
		if percent >= t.min {
			return t.tier
		}
	}
	return tiers[len(tiers)-1].tier
}

// QuizResult is the final outcome of a completed run.
type QuizResult struct {
	LevelKey string
	Score    int
	Total    int
	Percent  int
	Tier     Tier
}

// NewQuizResult builds the result summary for a finished session.
func NewQuizResult(s *QuizSession) QuizResult {
	percent := s.Percent()
	return QuizResult{
		LevelKey: s.LevelKey,
		Score:    s.CorrectAnswers,
		Total:    s.TotalQuestions,
		Percent:  percent,
		Tier:     TierFor(percent),
	}
}
