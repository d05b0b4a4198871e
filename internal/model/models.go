package model

// AllModels 返回所有需要迁移的模型
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Lesson{},
		&Quiz{},
		&Question{},
		&Answer{},
	}
}
