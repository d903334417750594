package model

// Question is one trivia question from the static corpus.
type Question struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Clue       string `json:"clue,omitempty"` // revealed by the buyHint extra
}

// TieBreaker is a numeric-answer question used to break score ties.
type TieBreaker struct {
	ID           string  `json:"id"`
	Text         string  `json:"text"`
	AnswerNumber float64 `json:"answerNumber"`
}
