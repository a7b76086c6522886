package repository

import (
	"onlinecourse_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

// ListPopular 按报名人数倒序取前 limit 门课程
func (r *CourseRepository) ListPopular(limit int) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Order("total_enrollment desc").Order("id asc").Limit(limit).Find(&courses).Error
	return courses, err
}

// FindDetail loads the course with lessons, instructors and the exam
// (questions and their choices) in display order.
func (r *CourseRepository) FindDetail(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc, id asc")
		}).
		Preload("Instructors.User").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc, id asc")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		First(&course, id).Error
	return &course, err
}

// CreateGraph inserts a course together with its lessons, questions and
// choices. Instructors must already exist.
func (r *CourseRepository) CreateGraph(tx *gorm.DB, course *model.Course) error {
	return tx.Omit("Instructors.*").Create(course).Error
}

// Delete removes the course and everything hanging off it. The FK cascades
// do the same on stores that enforce them; doing it by hand keeps stores
// without enforcement consistent.
func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		enrollmentIDs := tx.Model(&model.Enrollment{}).Select("id").Where("course_id = ?", id)
		submissionIDs := tx.Model(&model.Submission{}).Select("id").Where("enrollment_id IN (?)", enrollmentIDs)
		questionIDs := tx.Model(&model.Question{}).Select("id").Where("course_id = ?", id)
		choiceIDs := tx.Model(&model.Choice{}).Select("id").Where("question_id IN (?)", questionIDs)

		if err := tx.Exec("DELETE FROM submission_choices WHERE submission_id IN (?) OR choice_id IN (?)", submissionIDs, choiceIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("enrollment_id IN (?)", enrollmentIDs).Delete(&model.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Enrollment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.Choice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&model.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM course_instructors WHERE course_id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Delete(&model.Course{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// IncrementEnrollment bumps the counter with a single atomic UPDATE.
func (r *CourseRepository) IncrementEnrollment(tx *gorm.DB, courseID uint) error {
	res := tx.Model(&model.Course{}).
		Where("id = ?", courseID).
		UpdateColumn("total_enrollment", gorm.Expr("total_enrollment + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RecountEnrollments rewrites total_enrollment from the enrollments table and
// returns how many courses had drifted.
func (r *CourseRepository) RecountEnrollments() (int64, error) {
	count := func() *gorm.DB {
		return r.DB.Model(&model.Enrollment{}).
			Select("COUNT(*)").
			Where("enrollments.course_id = courses.id")
	}

	res := r.DB.Model(&model.Course{}).
		Where("total_enrollment <> (?)", count()).
		UpdateColumn("total_enrollment", count())
	return res.RowsAffected, res.Error
}
