package entities

// Question kinds. Reading questions carry a passage and run on a longer countdown.
const (
	KindStandard = "standard"
	KindReading  = "reading"
)

// OptionLetters maps option indices to the letters shown on answer buttons.
var OptionLetters = []string{"A", "B", "C", "D"}

// Question is a single multiple-choice question. Instances are built once at
// load time and never mutated afterwards; CorrectIndex is always the canonical
// 0-based form regardless of how the source data encoded the answer.
type Question struct {
	Prompt       string   // question text
	Passage      string   // reading passage, empty for standard questions
	Options      []string // answer options in display order
	CorrectIndex int      // 0-based index into Options
	Explanation  string   // optional explanation shown with feedback
	Kind         string   // KindStandard or KindReading
}

// CorrectOption returns the text of the correct option.
func (q *Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// CorrectLetter returns the button letter of the correct option.
func (q *Question) CorrectLetter() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(OptionLetters) {
		return ""
	}
	return OptionLetters[q.CorrectIndex]
}

// LetterIndex converts an answer letter ("A".."D") to an option index.
// It returns -1 for anything that is not a known letter.
func LetterIndex(letter string) int {
	for i, l := range OptionLetters {
		if l == letter {
			return i
		}
	}
	return -1
}
