package model

import (
	"time"
)

type EnrollmentMode string

const (
	ModeAudit EnrollmentMode = "audit"
	ModeHonor EnrollmentMode = "honor"
	ModeBeta  EnrollmentMode = "beta"
)

const DefaultRating = 5.0

// Enrollment links a user to a course. (user_id, course_id) is unique so a
// concurrent double enroll cannot produce a second row.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID       uint           `gorm:"uniqueIndex:idx_enrollment_user_course;not null" json:"userId"`
	User         *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CourseID     uint           `gorm:"uniqueIndex:idx_enrollment_user_course;index;not null" json:"courseId"`
	Course       *Course        `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	DateEnrolled time.Time      `gorm:"type:date" json:"dateEnrolled"`
	Mode         EnrollmentMode `gorm:"size:5;default:'audit'" json:"mode"`
	Rating       float64        `gorm:"default:5" json:"rating"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
