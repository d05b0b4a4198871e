package repository

import (
	"github.com/ashwinyue/quiz-ai/internal/model"
	"gorm.io/gorm"
)

// CourseRepository 课程数据访问
type CourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository 创建课程仓库
func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetByID 获取课程
func (r *CourseRepository) GetByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.db.Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetLessonByID 获取课时
func (r *CourseRepository) GetLessonByID(id string) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.db.Where("id = ?", id).First(&lesson).Error
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListLessons 列出课程下的课时
func (r *CourseRepository) ListLessons(courseID string) ([]*model.Lesson, error) {
	var lessons []*model.Lesson
	err := r.db.Where("course_id = ?", courseID).Order("created_at").Find(&lessons).Error
	return lessons, err
}

// Create 创建课程
func (r *CourseRepository) Create(course *model.Course) error {
	return r.db.Create(course).Error
}

// CreateLesson 创建课时
func (r *CourseRepository) CreateLesson(lesson *model.Lesson) error {
	return r.db.Create(lesson).Error
}
