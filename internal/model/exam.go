package model

const DefaultGrade = 1

// Question belongs to one course and is worth Grade points. Grade has no
// column default: gorm would substitute it for a legitimate 0.
// swagger:model Question
type Question struct {
	BaseModel
	CourseID uint     `gorm:"index;not null" json:"courseId"`
	Text     string   `gorm:"column:question_text;type:text;not null" json:"text"`
	Grade    int      `gorm:"not null;check:grade >= 0" json:"grade"`
	Order    int      `gorm:"column:sort_order;default:0" json:"order"`
	Choices  []Choice `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"column:choice_text;size:500;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"-"` // 不出现在任何接口响应中
}

func (Choice) TableName() string {
	return "choices"
}
