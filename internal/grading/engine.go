// Package grading scores exam submissions against a course's questions.
//
// Everything here is a pure function of the questions (with their choices
// loaded) and the set of selected choice ids, so a result can be recomputed
// from persisted data at any time.
package grading

import (
	"math"
	"sort"
	"strconv"

	"onlinecourse_backend/internal/model"
)

// DefaultPassPercent is the lowest score that passes an exam.
const DefaultPassPercent = 60.0

// ChoiceSet is a set of selected choice ids.
type ChoiceSet map[uint]struct{}

func NewChoiceSet(ids ...uint) ChoiceSet {
	s := make(ChoiceSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s ChoiceSet) Has(id uint) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s ChoiceSet) Sorted() []uint {
	ids := make([]uint, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SelectedChoice is a picked choice as shown back to the learner. It carries
// no correctness flag so results do not publish the answer key.
type SelectedChoice struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// QuestionResult is the outcome for one question of the course.
type QuestionResult struct {
	QuestionID      uint             `json:"questionId"`
	Text            string           `json:"text"`
	Grade           int              `json:"grade"`
	SelectedChoices []SelectedChoice `json:"selectedChoices"`
	IsCorrect       bool             `json:"isCorrect"`
}

// Report is the graded result of one submission.
// swagger:model ScoreReport
type Report struct {
	Questions    []QuestionResult `json:"questions"`
	EarnedPoints int              `json:"earned"`
	TotalPoints  int              `json:"total"`
	ScorePercent float64          `json:"scorePercent"`
	PassPercent  float64          `json:"passPercent"`
	Passed       bool             `json:"passed"`
}

// IsCorrectAnswer reports whether the learner selected exactly the correct
// choices of q. Selected ids that do not belong to q are ignored, so a
// question without correct choices is satisfied only when none of its
// choices were picked.
func IsCorrectAnswer(q model.Question, selected ChoiceSet) bool {
	var correct, selectedCorrect, selectedIncorrect int
	for _, c := range q.Choices {
		picked := selected.Has(c.ID)
		if c.IsCorrect {
			correct++
			if picked {
				selectedCorrect++
			}
		} else if picked {
			selectedIncorrect++
		}
	}
	return correct == selectedCorrect && selectedIncorrect == 0
}

// Score grades every question of the course, including the ones the learner
// left blank. questions must have their Choices loaded.
func Score(questions []model.Question, selected ChoiceSet, passPercent float64) Report {
	report := Report{
		Questions:   make([]QuestionResult, 0, len(questions)),
		PassPercent: passPercent,
	}

	for _, q := range questions {
		picked := make([]SelectedChoice, 0)
		for _, c := range q.Choices {
			if selected.Has(c.ID) {
				picked = append(picked, SelectedChoice{ID: c.ID, Text: c.Text})
			}
		}

		ok := IsCorrectAnswer(q, selected)
		report.TotalPoints += q.Grade
		if ok {
			report.EarnedPoints += q.Grade
		}

		report.Questions = append(report.Questions, QuestionResult{
			QuestionID:      q.ID,
			Text:            q.Text,
			Grade:           q.Grade,
			SelectedChoices: picked,
			IsCorrect:       ok,
		})
	}

	report.ScorePercent = Percent(report.EarnedPoints, report.TotalPoints)
	report.Passed = report.TotalPoints > 0 && report.ScorePercent >= passPercent
	return report
}

// Percent returns earned/total*100 rounded to two decimals, or 0 when there
// is nothing to earn. Rounding is done on the exact binary value with ties to
// even (59.995 is stored just below the tie and becomes 59.99), so a score
// never rounds up across the pass threshold.
func Percent(earned, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	v := float64(earned) / float64(total) * 100
	p, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return 0.0
	}
	return math.Max(0, math.Min(100, p))
}
