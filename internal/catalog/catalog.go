// Package catalog reads course catalogs from YAML and turns them into
// model graphs ready to insert.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"onlinecourse_backend/internal/model"
	"onlinecourse_backend/internal/util"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

const maxCourseName = 30

// Catalog is the top-level document:
//
//	courses:
//	  - name: Go 101
//	    instructors: [{user_id: 7, name: Ada}]
//	    lessons: [{title: Intro, content: ...}]
//	    questions:
//	      - text: Which are keywords?
//	        grade: 10
//	        choices: [{text: func, correct: true}, {text: def}]
type Catalog struct {
	Courses []Course `yaml:"courses"`
}

type Course struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Image       string       `yaml:"image"`
	PubDate     string       `yaml:"pub_date"`
	Instructors []Instructor `yaml:"instructors"`
	Lessons     []Lesson     `yaml:"lessons"`
	Questions   []Question   `yaml:"questions"`
}

type Instructor struct {
	UserID   uint   `yaml:"user_id"`
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	FullTime *bool  `yaml:"full_time"`
}

type Lesson struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

type Question struct {
	Text    string   `yaml:"text"`
	Grade   *int     `yaml:"grade"`
	Choices []Choice `yaml:"choices"`
}

type Choice struct {
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// Parse decodes and validates a catalog. The document is checked against
// schema.json first so that typos such as "corect" are reported with their
// path instead of silently producing an unanswerable exam.
func Parse(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidCatalog, err)
	}

	var tree interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidCatalog, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: empty document", util.ErrInvalidCatalog)
	}
	if err := checkShape(tree); err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", util.ErrInvalidCatalog)
		}
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func ParseBytes(data []byte) (*Catalog, error) {
	return Parse(bytes.NewReader(data))
}

// Load reads a catalog file from disk.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

func (c *Catalog) Validate() error {
	if len(c.Courses) == 0 {
		return fmt.Errorf("%w: no courses", util.ErrInvalidCatalog)
	}
	for i, course := range c.Courses {
		if err := course.validate(); err != nil {
			return fmt.Errorf("%w: course %d: %v", util.ErrInvalidCatalog, i+1, err)
		}
	}
	return nil
}

// normalizeName trims and composes the name (NFC) so that "é" typed as
// e + U+0301 counts as one character and compares equal to the composed form.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

func (c *Course) validate() error {
	name := normalizeName(c.Name)
	if name == "" {
		return errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > maxCourseName {
		return fmt.Errorf("name %q longer than %d characters", name, maxCourseName)
	}
	if c.PubDate != "" {
		if _, err := time.Parse(util.DateFormat, c.PubDate); err != nil {
			return fmt.Errorf("pub_date %q: want YYYY-MM-DD", c.PubDate)
		}
	}
	for i, in := range c.Instructors {
		if in.UserID == 0 {
			return fmt.Errorf("instructor %d: user_id is required", i+1)
		}
	}
	for i, q := range c.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d: text is required", i+1)
		}
		if q.Grade != nil && *q.Grade < 0 {
			return fmt.Errorf("question %d: grade must be >= 0", i+1)
		}
		if len(q.Choices) == 0 {
			return fmt.Errorf("question %d: at least one choice is required", i+1)
		}
		for j, ch := range q.Choices {
			if strings.TrimSpace(ch.Text) == "" {
				return fmt.Errorf("question %d choice %d: text is required", i+1, j+1)
			}
		}
	}
	return nil
}

// ToModel builds the course graph. Lessons and questions keep file order.
// Instructors are resolved separately since they reference existing users.
func (c *Course) ToModel() *model.Course {
	course := &model.Course{
		Name:        normalizeName(c.Name),
		Description: c.Description,
		ImageKey:    c.Image,
	}
	if c.PubDate != "" {
		if d, err := time.Parse(util.DateFormat, c.PubDate); err == nil {
			course.PubDate = &d
		}
	}

	for i, l := range c.Lessons {
		course.Lessons = append(course.Lessons, model.Lesson{
			Title:   l.Title,
			Order:   i + 1,
			Content: l.Content,
		})
	}

	for i, q := range c.Questions {
		grade := model.DefaultGrade
		if q.Grade != nil {
			grade = *q.Grade
		}
		question := model.Question{
			Text:  q.Text,
			Grade: grade,
			Order: i + 1,
		}
		for _, ch := range q.Choices {
			question.Choices = append(question.Choices, model.Choice{
				Text:      ch.Text,
				IsCorrect: ch.Correct,
			})
		}
		course.Questions = append(course.Questions, question)
	}
	return course
}

func (in Instructor) IsFullTime() bool {
	return in.FullTime == nil || *in.FullTime
}
