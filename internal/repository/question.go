package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/aliskhannn/english-level-bot/internal/domain/entities"
)

var (
	ErrLevelNotFound = errors.New("level or topic not found")
	ErrEmptyBank     = errors.New("question bank is empty")
)

// CEFRLevels lists the supported levels in display order.
var CEFRLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

const readingKeyPrefix = "reading:"

// ReadingKey returns the bank key for the reading test of a level.
func ReadingKey(level string) string {
	return readingKeyPrefix + level
}

// IsReadingKey reports whether a bank key addresses a reading test.
func IsReadingKey(key string) bool {
	return strings.HasPrefix(key, readingKeyPrefix)
}

// Topic is a named partition of the bank outside the CEFR levels.
type Topic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// rawQuestion mirrors the source JSON. The correct answer appears in several
// historical encodings: a letter in "answer", a number or a letter in
// "correct", or the full answer text in "correct_text".
type rawQuestion struct {
	Question    string          `json:"question"`
	Passage     string          `json:"passage"`
	Options     []string        `json:"options"`
	Correct     json.RawMessage `json:"correct"`
	Answer      string          `json:"answer"`
	CorrectText string          `json:"correct_text"`
	Explanation string          `json:"explanation"`
}

// QuestionRepository provides read-only access to the pre-loaded question
// sets. All normalization happens once here; everything downstream sees only
// the canonical 0-based CorrectIndex.
type QuestionRepository struct {
	sets   map[string][]entities.Question
	topics []Topic
	logger *zap.Logger
}

// NewQuestionRepository loads the standard, reading and topic question files.
// Reading sets are stored under ReadingKey(level), topic sets under their id.
func NewQuestionRepository(questionsPath, readingPath, topicsPath string, logger *zap.Logger) (*QuestionRepository, error) {
	r := &QuestionRepository{
		sets:   make(map[string][]entities.Question),
		logger: logger,
	}

	standard, err := loadLevelFile(questionsPath)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	for level, raw := range standard {
		r.sets[level] = r.normalizeAll(level, raw, entities.KindStandard)
	}

	reading, err := loadLevelFile(readingPath)
	if err != nil {
		return nil, fmt.Errorf("load reading tests: %w", err)
	}
	for level, raw := range reading {
		key := ReadingKey(level)
		r.sets[key] = r.normalizeAll(key, raw, entities.KindReading)
	}

	topics, err := loadTopicsFile(topicsPath)
	if err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	for _, t := range topics {
		r.topics = append(r.topics, Topic{ID: t.ID, Title: t.Title})
		r.sets[t.ID] = r.normalizeAll(t.ID, t.Questions, entities.KindStandard)
	}

	if len(r.sets) == 0 {
		return nil, ErrEmptyBank
	}

	return r, nil
}

// QuestionsFor returns the ordered question set for a level, reading key or
// topic id. It returns ErrLevelNotFound for unknown keys.
func (r *QuestionRepository) QuestionsFor(key string) ([]entities.Question, error) {
	qs, ok := r.sets[key]
	if !ok || len(qs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, key)
	}

	out := make([]entities.Question, len(qs))
	copy(out, qs)
	return out, nil
}

// Levels returns the CEFR levels that actually have questions loaded.
func (r *QuestionRepository) Levels() []string {
	var levels []string
	for _, l := range CEFRLevels {
		if len(r.sets[l]) > 0 {
			levels = append(levels, l)
		}
	}
	return levels
}

// ReadingLevels returns the levels that have a reading test loaded.
func (r *QuestionRepository) ReadingLevels() []string {
	var levels []string
	for _, l := range CEFRLevels {
		if len(r.sets[ReadingKey(l)]) > 0 {
			levels = append(levels, l)
		}
	}
	return levels
}

// Topics returns the topic partitions in file order.
func (r *QuestionRepository) Topics() []Topic {
	return r.topics
}

func (r *QuestionRepository) normalizeAll(key string, raw []rawQuestion, kind string) []entities.Question {
	out := make([]entities.Question, 0, len(raw))
	for i, rq := range raw {
		q := entities.Question{
			Prompt:      rq.Question,
			Passage:     rq.Passage,
			Options:     rq.Options,
			Explanation: rq.Explanation,
			Kind:        kind,
		}

		idx, ok := correctIndex(rq)
		if !ok {
			// Data-integrity problem in the source file. Keep the record so
			// the set length stays stable, but make the fallback visible.
			r.logger.Warn("question has no resolvable correct answer, defaulting to option 0",
				zap.String("set", key),
				zap.Int("question", i),
			)
			idx = 0
		}
		q.CorrectIndex = idx

		out = append(out, q)
	}
	return out
}

// correctIndex resolves whichever encoding the record uses into a 0-based
// option index. The second return value is false when none of the encodings
// resolve to a valid option.
func correctIndex(rq rawQuestion) (int, bool) {
	if idx := entities.LetterIndex(strings.ToUpper(strings.TrimSpace(rq.Answer))); idx >= 0 && idx < len(rq.Options) {
		return idx, true
	}

	if len(rq.Correct) > 0 {
		var num int
		if err := json.Unmarshal(rq.Correct, &num); err == nil {
			if num >= 0 && num < len(rq.Options) {
				return num, true
			}
			return 0, false
		}

		var s string
		if err := json.Unmarshal(rq.Correct, &s); err == nil {
			s = strings.TrimSpace(s)
			if idx := entities.LetterIndex(strings.ToUpper(s)); idx >= 0 && idx < len(rq.Options) {
				return idx, true
			}
			// Some variants stored the full answer text instead of a letter.
			for i, opt := range rq.Options {
				if strings.EqualFold(strings.TrimSpace(opt), s) {
					return i, true
				}
			}
		}
	}

	if rq.CorrectText != "" {
		for i, opt := range rq.Options {
			if strings.EqualFold(strings.TrimSpace(opt), strings.TrimSpace(rq.CorrectText)) {
				return i, true
			}
		}
	}

	return 0, false
}

func loadLevelFile(path string) (map[string][]rawQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sets map[string][]rawQuestion
	if err = json.Unmarshal(data, &sets); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}

	return sets, nil
}

type rawTopic struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Questions []rawQuestion `json:"questions"`
}

func loadTopicsFile(path string) ([]rawTopic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Topics []rawTopic `json:"topics"`
	}
	if err = json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}

	return wrapper.Topics, nil
}
