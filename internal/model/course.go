package model

import "time"

// Course 课程
type Course struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:255"`
	Description string    `gorm:"type:text"`
	OwnerID     string    `gorm:"size:36;index"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Course) TableName() string {
	return "courses"
}

// Lesson 课时，出题所依赖的文档挂在课时上
type Lesson struct {
	ID           string    `gorm:"primaryKey;size:36"`
	CourseID     string    `gorm:"size:36;index"`
	Title        string    `gorm:"size:255"`
	DocumentPath string    `gorm:"size:512"` // 课件文件路径（docx/pdf/txt）
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Lesson) TableName() string {
	return "lessons"
}
