package questionbank

import (
	"encoding/json"
	"log"
	"math"
	"os"
	"strings"
	"sync"

	"quizfund/internal/model"
)

// Bank loads the static trivia corpus and the separate tie-breaker
// pool, and filters them for round assembly. Content shortage is a
// recoverable condition: every failure path degrades to an empty slice
// so one bad file never takes down live rooms.
type Bank struct {
	questionsFile   string
	tieBreakersFile string

	once sync.Once
	pool []model.Question
}

func New(questionsFile, tieBreakersFile string) *Bank {
	return &Bank{
		questionsFile:   questionsFile,
		tieBreakersFile: tieBreakersFile,
	}
}

// LoadPool reads the question corpus. The result is cached after the
// first successful or failed read.
func (b *Bank) LoadPool() []model.Question {
	b.once.Do(func() {
		b.pool = readQuestions(b.questionsFile)
	})
	return b.pool
}

func readQuestions(path string) []model.Question {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("question bank: corpus file %s missing, serving empty pool", path)
		} else {
			log.Printf("question bank: failed to read %s: %v", path, err)
		}
		return []model.Question{}
	}

	var questions []model.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		log.Printf("question bank: malformed JSON in %s: %v", path, err)
		return []model.Question{}
	}
	return questions
}

// Select filters the pool by exclusion set, then optional category and
// difficulty (both case-insensitive exact matches). At most
// requiredCount questions are returned when requiredCount > 0; fewer
// (possibly zero) when the pool runs short. Selection order follows
// corpus order, so the same inputs always yield the same output.
func (b *Bank) Select(exclude map[string]struct{}, category, difficulty string, requiredCount int) []model.Question {
	pool := b.LoadPool()

	selected := make([]model.Question, 0, requiredCount)
	for _, q := range pool {
		if _, used := exclude[q.ID]; used {
			continue
		}
		if category != "" && !strings.EqualFold(q.Category, category) {
			continue
		}
		if difficulty != "" && !strings.EqualFold(q.Difficulty, difficulty) {
			continue
		}
		selected = append(selected, q)
		if requiredCount > 0 && len(selected) == requiredCount {
			return selected
		}
	}

	if requiredCount > 0 && len(selected) < requiredCount {
		log.Printf("question bank: only %d of %d questions available (category=%q difficulty=%q)",
			len(selected), requiredCount, category, difficulty)
	}
	return selected
}

// LoadTieBreakerPool reads the numeric-answer tie-breaker pool.
// Entries without text or with a non-finite answer are dropped.
func (b *Bank) LoadTieBreakerPool() []model.TieBreaker {
	data, err := os.ReadFile(b.tieBreakersFile)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("question bank: tie-breaker file %s missing, serving empty pool", b.tieBreakersFile)
		} else {
			log.Printf("question bank: failed to read %s: %v", b.tieBreakersFile, err)
		}
		return []model.TieBreaker{}
	}

	var raw []model.TieBreaker
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("question bank: malformed JSON in %s: %v", b.tieBreakersFile, err)
		return []model.TieBreaker{}
	}

	valid := make([]model.TieBreaker, 0, len(raw))
	for _, tb := range raw {
		if strings.TrimSpace(tb.Text) == "" {
			continue
		}
		if math.IsNaN(tb.AnswerNumber) || math.IsInf(tb.AnswerNumber, 0) {
			continue
		}
		valid = append(valid, tb)
	}
	return valid
}
