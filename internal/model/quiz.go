package model

import "time"

// 题目类型
const (
	QuestionTypeSingleChoice   = "SINGLE_CHOICE"
	QuestionTypeMultipleChoice = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalse      = "TRUE_FALSE"
)

// Quiz 测验
type Quiz struct {
	ID        string    `gorm:"primaryKey;size:36"`
	LessonID  string    `gorm:"size:36;index"`
	Title     string    `gorm:"size:255"`
	Generated bool      `gorm:"index;default:false"` // 题目是否已生成
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// Question 题目
type Question struct {
	ID           string    `gorm:"primaryKey;size:36"`
	QuizID       string    `gorm:"size:36;index"`
	QuestionText string    `gorm:"type:text"`
	Explanation  string    `gorm:"type:text"`
	Point        float64   `gorm:"default:1"`
	QuestionType string    `gorm:"size:20"`
	SortOrder    int       `gorm:"default:0"`
	Answers      []Answer  `gorm:"foreignKey:QuestionID"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Question) TableName() string {
	return "questions"
}

// Answer 选项
type Answer struct {
	ID         string `gorm:"primaryKey;size:36"`
	QuestionID string `gorm:"size:36;index"`
	AnswerText string `gorm:"type:text"`
	IsCorrect  bool   `gorm:"default:false"`
	SortOrder  int    `gorm:"default:0"`
}

func (Answer) TableName() string {
	return "answers"
}
