package model

// Submission is one exam attempt. Its choice set is written once, when the
// row is created.
// swagger:model Submission
type Submission struct {
	BaseModel
	EnrollmentID uint        `gorm:"index;not null" json:"enrollmentId"`
	Enrollment   *Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
	Choices      []Choice    `gorm:"many2many:submission_choices;constraint:OnDelete:CASCADE" json:"choices"`
}

func (Submission) TableName() string {
	return "submissions"
}

// ChoiceIDs returns the ids of the submission's selected choices.
func (s *Submission) ChoiceIDs() []uint {
	ids := make([]uint, 0, len(s.Choices))
	for _, c := range s.Choices {
		ids = append(ids, c.ID)
	}
	return ids
}
