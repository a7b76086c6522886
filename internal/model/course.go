package model

import (
	"time"
)

const DefaultCourseName = "online course"

// swagger:model Course
type Course struct {
	BaseModel
	Name            string       `gorm:"size:30;not null;default:'online course'" json:"name"`
	ImageKey        string       `gorm:"size:255" json:"-"`
	Description     string       `gorm:"size:1000" json:"description"`
	PubDate         *time.Time   `gorm:"type:date" json:"pubDate,omitempty"`
	TotalEnrollment int          `gorm:"not null;default:0;index" json:"totalEnrollment"`
	Lessons         []Lesson     `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
	Questions       []Question   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Instructors     []Instructor `gorm:"many2many:course_instructors;constraint:OnDelete:CASCADE" json:"instructors,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:200;default:'title'" json:"title"`
	Order    int    `gorm:"column:sort_order;default:0" json:"order"`
	Content  string `gorm:"type:text" json:"content"`
}

func (Lesson) TableName() string {
	return "lessons"
}
