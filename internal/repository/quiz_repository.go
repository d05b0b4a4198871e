package repository

import (
	"github.com/ashwinyue/quiz-ai/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizRepository 测验数据访问
type QuizRepository struct {
	db *gorm.DB
}

// NewQuizRepository 创建测验仓库
func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create 创建测验
func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.db.Create(quiz).Error
}

// GetByID 获取测验
func (r *QuizRepository) GetByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.db.Where("id = ?", id).First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// SaveQuestions 保存生成的题目和选项，并把测验标记为已生成。
// 整体在一个事务中完成，避免保存到一半对外可见。
func (r *QuizRepository) SaveQuestions(quizID string, questions []*model.Question) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i, q := range questions {
			if q.ID == "" {
				q.ID = uuid.New().String()
			}
			q.QuizID = quizID
			q.SortOrder = i
			for j := range q.Answers {
				if q.Answers[j].ID == "" {
					q.Answers[j].ID = uuid.New().String()
				}
				q.Answers[j].QuestionID = q.ID
				q.Answers[j].SortOrder = j
			}
			if err := tx.Create(q).Error; err != nil {
				return err
			}
		}

		return tx.Model(&model.Quiz{}).Where("id = ?", quizID).
			UpdateColumn("generated", true).Error
	})
}

// ListQuestions 列出测验下的题目
func (r *QuizRepository) ListQuestions(quizID string) ([]*model.Question, error) {
	var questions []*model.Question
	err := r.db.Preload("Answers").Where("quiz_id = ?", quizID).
		Order("sort_order").Find(&questions).Error
	return questions, err
}

// CountQuestions 统计测验下的题目数量
func (r *QuizRepository) CountQuestions(quizID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Question{}).Where("quiz_id = ?", quizID).Count(&count).Error
	return count, err
}
