package repository

import (
	"database/sql"
	"edunest_backend/internal/model"

	"gorm.io/gorm"
)

type SectionRepository struct {
	DB *gorm.DB
}

func NewSectionRepository(db *gorm.DB) *SectionRepository {
	return &SectionRepository{DB: db}
}

func (r *SectionRepository) WithTx(tx *gorm.DB) *SectionRepository {
	return &SectionRepository{DB: tx}
}

func (r *SectionRepository) Create(section *model.Section) error {
	return r.DB.Create(section).Error
}

func (r *SectionRepository) Update(section *model.Section) error {
	return r.DB.Save(section).Error
}

func (r *SectionRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Section{}, id).Error
}

func (r *SectionRepository) DeleteByCourse(courseID uint) error {
	return r.DB.Where("course_id = ?", courseID).Delete(&model.Section{}).Error
}

func (r *SectionRepository) FindByID(id uint) (*model.Section, error) {
	var section model.Section
	err := r.DB.First(&section, id).Error
	return &section, err
}

func (r *SectionRepository) FindByCourse(courseID uint, withLectures bool) ([]model.Section, error) {
	var sections []model.Section
	query := r.DB.Where("course_id = ?", courseID).Order("sort_order ASC, id ASC")
	if withLectures {
		query = query.Preload("Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})
	}
	err := query.Find(&sections).Error
	return sections, err
}

// NextOrder 新章节默认排在最后
func (r *SectionRepository) NextOrder(courseID uint) (int, error) {
	var max sql.NullInt64
	err := r.DB.Model(&model.Section{}).
		Where("course_id = ?", courseID).
		Select("MAX(sort_order)").
		Row().Scan(&max)
	if err != nil || !max.Valid {
		return 1, err
	}
	return int(max.Int64) + 1, nil
}
