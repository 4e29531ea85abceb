package repository

import (
	"github.com/hollyoake/coursemark/internal/model"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	FindByID(id uint) (*model.QuestionResponse, error)
	Update(response *model.QuestionResponse) error
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) FindByID(id uint) (*model.QuestionResponse, error) {
	var response model.QuestionResponse
	if err := r.db.Preload("Question").First(&response, id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) Update(response *model.QuestionResponse) error {
	return r.db.Save(response).Error
}
