package quiz

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"math/rand"
	"strings"
	"sync"
	"time"

	"trivia-quiz/internal/opentdb"
)

// Answer is one selectable option of a Question.
type Answer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// Question holds a prompt and its answers in display order. Exactly one
// answer is correct.
type Question struct {
	QuestionID string   `json:"question_id"`
	Question   string   `json:"question"`
	Answers    []Answer `json:"answers"`
}

// CorrectIndex returns the position of the correct answer, or -1.
func (q Question) CorrectIndex() int {
	for idx, answer := range q.Answers {
		if answer.IsCorrect {
			return idx
		}
	}
	return -1
}

// Shuffler permutes answer sets. It is safe for concurrent use.
type Shuffler struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewShuffler(seed int64) *Shuffler {
	return &Shuffler{rnd: rand.New(rand.NewSource(seed))}
}

func newTimeSeededShuffler() *Shuffler {
	return NewShuffler(time.Now().UnixNano())
}

// Shuffle is a Fisher-Yates permutation of n elements.
func (s *Shuffler) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rnd.Shuffle(n, swap)
}

// BuildQuestions converts raw API items into questions, one per item, with
// entities decoded and answers shuffled once.
func BuildQuestions(raw []opentdb.RawQuestion, shuffler *Shuffler) []Question {
	if shuffler == nil {
		shuffler = newTimeSeededShuffler()
	}

	questions := make([]Question, 0, len(raw))
	for _, item := range raw {
		question := buildQuestion(item, shuffler)
		question.QuestionID = MakeQuestionID(question)
		questions = append(questions, question)
	}
	return questions
}

func MakeQuestionID(question Question) string {
	var keyBuilder strings.Builder
	keyBuilder.WriteString(question.Question)
	for _, answer := range question.Answers {
		keyBuilder.WriteString("|")
		keyBuilder.WriteString(answer.Text)
	}

	hash := sha1.Sum([]byte(keyBuilder.String()))
	return "q_" + hex.EncodeToString(hash[:])[:12]
}

func buildQuestion(raw opentdb.RawQuestion, shuffler *Shuffler) Question {
	answers := make([]Answer, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		answers = append(answers, Answer{
			Text:      html.UnescapeString(incorrect),
			IsCorrect: false,
		})
	}

	answers = append(answers, Answer{
		Text:      html.UnescapeString(raw.CorrectAnswer),
		IsCorrect: true,
	})

	shuffler.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	return Question{
		Question: html.UnescapeString(raw.Question),
		Answers:  answers,
	}
}
