package grading

import (
	"testing"

	"onlinecourse_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choice(id uint, correct bool) model.Choice {
	return model.Choice{BaseModel: model.BaseModel{ID: id}, IsCorrect: correct}
}

func question(id uint, grade int, choices ...model.Choice) model.Question {
	for i := range choices {
		choices[i].QuestionID = id
	}
	return model.Question{BaseModel: model.BaseModel{ID: id}, Grade: grade, Choices: choices}
}

// Question A (grade 10, correct {1,2}, incorrect {4}) and question B
// (grade 5, no correct choice, incorrect {3}).
func sampleCourse() []model.Question {
	return []model.Question{
		question(10, 10, choice(1, true), choice(2, true), choice(4, false)),
		question(20, 5, choice(3, false)),
	}
}

func TestIsCorrectAnswer(t *testing.T) {
	q := question(1, 1, choice(1, true), choice(2, true), choice(3, false))
	none := question(2, 1, choice(5, false), choice(6, false))

	tests := []struct {
		name     string
		q        model.Question
		selected ChoiceSet
		want     bool
	}{
		{"exact match", q, NewChoiceSet(1, 2), true},
		{"subset of correct", q, NewChoiceSet(1), false},
		{"superset with incorrect", q, NewChoiceSet(1, 2, 3), false},
		{"only incorrect", q, NewChoiceSet(3), false},
		{"empty selection", q, NewChoiceSet(), false},
		{"foreign ids ignored", q, NewChoiceSet(1, 2, 99), true},
		{"no correct choices, nothing selected", none, NewChoiceSet(), true},
		{"no correct choices, foreign ids only", none, NewChoiceSet(1, 2), true},
		{"no correct choices, one selected", none, NewChoiceSet(5), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCorrectAnswer(tt.q, tt.selected))
		})
	}
}

func TestIsCorrectAnswer_QuestionWithoutChoices(t *testing.T) {
	q := question(1, 3)
	assert.True(t, IsCorrectAnswer(q, NewChoiceSet()))
	assert.True(t, IsCorrectAnswer(q, NewChoiceSet(7)))
}

func TestScore_AllCorrect(t *testing.T) {
	report := Score(sampleCourse(), NewChoiceSet(1, 2), DefaultPassPercent)

	assert.Equal(t, 15, report.EarnedPoints)
	assert.Equal(t, 15, report.TotalPoints)
	assert.Equal(t, 100.0, report.ScorePercent)
	assert.True(t, report.Passed)

	require.Len(t, report.Questions, 2)
	assert.True(t, report.Questions[0].IsCorrect)
	assert.Len(t, report.Questions[0].SelectedChoices, 2)
	assert.True(t, report.Questions[1].IsCorrect)
	assert.Empty(t, report.Questions[1].SelectedChoices)
}

func TestScore_AllWrong(t *testing.T) {
	report := Score(sampleCourse(), NewChoiceSet(1, 3), DefaultPassPercent)

	assert.Equal(t, 0, report.EarnedPoints)
	assert.Equal(t, 15, report.TotalPoints)
	assert.Equal(t, 0.0, report.ScorePercent)
	assert.False(t, report.Passed)

	require.Len(t, report.Questions, 2)
	assert.Equal(t, uint(1), report.Questions[0].SelectedChoices[0].ID)
	assert.Equal(t, uint(3), report.Questions[1].SelectedChoices[0].ID)
}

func TestScore_PartialCredit(t *testing.T) {
	// only B is right: 5 of 15
	report := Score(sampleCourse(), NewChoiceSet(1), DefaultPassPercent)

	assert.Equal(t, 5, report.EarnedPoints)
	assert.Equal(t, 33.33, report.ScorePercent)
	assert.False(t, report.Passed)
}

func TestScore_NoQuestions(t *testing.T) {
	report := Score(nil, NewChoiceSet(1, 2), DefaultPassPercent)

	assert.Equal(t, 0, report.TotalPoints)
	assert.Equal(t, 0.0, report.ScorePercent)
	assert.False(t, report.Passed)
	assert.Empty(t, report.Questions)
}

func TestScore_ZeroGradeQuestions(t *testing.T) {
	qs := []model.Question{question(1, 0, choice(1, true))}
	report := Score(qs, NewChoiceSet(1), 0)

	assert.Equal(t, 0.0, report.ScorePercent)
	assert.False(t, report.Passed)
}

func TestScore_PassBoundary(t *testing.T) {
	tests := []struct {
		name    string
		earned  int
		total   int
		percent float64
		passed  bool
	}{
		{"exactly sixty", 6, 10, 60.0, true},
		{"just below sixty", 5999, 10000, 59.99, false},
		{"tie below sixty stays below", 11999, 20000, 59.99, false},
		{"tiny score rounds to even", 1, 800, 0.12, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := []model.Question{
				question(1, tt.earned, choice(1, true)),
				question(2, tt.total-tt.earned, choice(2, true)),
			}
			report := Score(qs, NewChoiceSet(1), DefaultPassPercent)

			assert.Equal(t, tt.percent, report.ScorePercent)
			assert.Equal(t, tt.passed, report.Passed)
		})
	}
}

func TestScore_Idempotent(t *testing.T) {
	qs := sampleCourse()
	selected := NewChoiceSet(1, 2, 3)

	first := Score(qs, selected, DefaultPassPercent)
	second := Score(qs, selected, DefaultPassPercent)
	assert.Equal(t, first, second)
}

func TestPercent_Range(t *testing.T) {
	for total := 1; total <= 50; total++ {
		for earned := 0; earned <= total; earned++ {
			p := Percent(earned, total)
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 100.0)
			assert.Equal(t, p, float64(int64(p*100+0.5))/100)
		}
	}
}

func TestChoiceSet_Sorted(t *testing.T) {
	assert.Equal(t, []uint{1, 5, 9}, NewChoiceSet(9, 1, 5, 1).Sorted())
	assert.Empty(t, NewChoiceSet().Sorted())
}
