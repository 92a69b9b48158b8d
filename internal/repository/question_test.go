package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newTestRepository(t *testing.T, questions, reading, topics string) *QuestionRepository {
	t.Helper()
	dir := t.TempDir()
	repo, err := NewQuestionRepository(
		writeFile(t, dir, "questions.json", questions),
		writeFile(t, dir, "reading.json", reading),
		writeFile(t, dir, "topics.json", topics),
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	return repo
}

const emptyTopics = `{"topics": []}`

func TestCorrectAnswerEncodings(t *testing.T) {
	questions := `{
		"A1": [
			{"question": "letter answer", "options": ["x", "y", "z"], "answer": "b"},
			{"question": "numeric correct", "options": ["x", "y", "z"], "correct": 2},
			{"question": "letter correct", "options": ["x", "y", "z"], "correct": "C"},
			{"question": "text in correct", "options": ["red", "green", "blue"], "correct": "green"},
			{"question": "correct_text", "options": ["red", "green", "blue"], "correct_text": "Blue"},
			{"question": "unresolvable", "options": ["x", "y", "z"], "correct": 7}
		]
	}`
	repo := newTestRepository(t, questions, `{}`, emptyTopics)

	qs, err := repo.QuestionsFor("A1")
	if err != nil {
		t.Fatalf("questions for A1: %v", err)
	}
	want := []int{1, 2, 2, 1, 2, 0}
	if len(qs) != len(want) {
		t.Fatalf("expected %d questions, got %d", len(want), len(qs))
	}
	for i, w := range want {
		if qs[i].CorrectIndex != w {
			t.Errorf("question %d (%s): CorrectIndex = %d, want %d",
				i, qs[i].Prompt, qs[i].CorrectIndex, w)
		}
	}
}

func TestUnknownKey(t *testing.T) {
	repo := newTestRepository(t,
		`{"A1": [{"question": "q", "options": ["x", "y"], "correct": 0}]}`,
		`{}`, emptyTopics)

	if _, err := repo.QuestionsFor("Z9"); !errors.Is(err, ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound, got %v", err)
	}
}

func TestQuestionsForReturnsCopy(t *testing.T) {
	repo := newTestRepository(t,
		`{"A1": [{"question": "q", "options": ["x", "y"], "correct": 1}]}`,
		`{}`, emptyTopics)

	first, err := repo.QuestionsFor("A1")
	if err != nil {
		t.Fatalf("questions for A1: %v", err)
	}
	first[0].CorrectIndex = 0

	second, err := repo.QuestionsFor("A1")
	if err != nil {
		t.Fatalf("questions for A1: %v", err)
	}
	if second[0].CorrectIndex != 1 {
		t.Fatal("caller mutation leaked into the repository")
	}
}

func TestReadingSets(t *testing.T) {
	reading := `{
		"B1": [
			{"passage": "Some short text.", "question": "q", "options": ["x", "y"], "answer": "A"}
		]
	}`
	repo := newTestRepository(t,
		`{"A1": [{"question": "q", "options": ["x", "y"], "correct": 0}]}`,
		reading, emptyTopics)

	qs, err := repo.QuestionsFor(ReadingKey("B1"))
	if err != nil {
		t.Fatalf("questions for reading B1: %v", err)
	}
	if qs[0].Kind != entities.KindReading {
		t.Fatalf("expected reading kind, got %s", qs[0].Kind)
	}
	if qs[0].Passage == "" {
		t.Fatal("expected passage to be kept")
	}

	if got := repo.ReadingLevels(); len(got) != 1 || got[0] != "B1" {
		t.Fatalf("expected reading levels [B1], got %v", got)
	}
	// The plain B1 level has no questions loaded.
	if _, err := repo.QuestionsFor("B1"); !errors.Is(err, ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound for plain B1, got %v", err)
	}
}

func TestTopics(t *testing.T) {
	topics := `{
		"topics": [
			{
				"id": "ona_tili",
				"title": "Ona tili",
				"questions": [
					{"question": "q", "options": ["x", "y"], "answer": "B"}
				]
			}
		]
	}`
	repo := newTestRepository(t,
		`{"A1": [{"question": "q", "options": ["x", "y"], "correct": 0}]}`,
		`{}`, topics)

	got := repo.Topics()
	if len(got) != 1 || got[0].ID != "ona_tili" || got[0].Title != "Ona tili" {
		t.Fatalf("unexpected topics: %+v", got)
	}

	qs, err := repo.QuestionsFor("ona_tili")
	if err != nil {
		t.Fatalf("questions for topic: %v", err)
	}
	if qs[0].CorrectIndex != 1 {
		t.Fatalf("expected CorrectIndex 1, got %d", qs[0].CorrectIndex)
	}
}

func TestLevelsSkipEmptySets(t *testing.T) {
	repo := newTestRepository(t,
		`{"A1": [{"question": "q", "options": ["x", "y"], "correct": 0}], "B2": []}`,
		`{}`, emptyTopics)

	if got := repo.Levels(); len(got) != 1 || got[0] != "A1" {
		t.Fatalf("expected levels [A1], got %v", got)
	}
}

func TestReadingKey(t *testing.T) {
	if got := ReadingKey("A2"); got != "reading:A2" {
		t.Fatalf("ReadingKey(A2) = %s", got)
	}
	if !IsReadingKey("reading:A2") {
		t.Fatal("expected reading:A2 to be a reading key")
	}
	if IsReadingKey("A2") {
		t.Fatal("A2 is not a reading key")
	}
}
