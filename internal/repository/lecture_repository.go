package repository

import (
	"database/sql"
	"edunest_backend/internal/model"

	"gorm.io/gorm"
)

type LectureRepository struct {
	DB *gorm.DB
}

func NewLectureRepository(db *gorm.DB) *LectureRepository {
	return &LectureRepository{DB: db}
}

func (r *LectureRepository) WithTx(tx *gorm.DB) *LectureRepository {
	return &LectureRepository{DB: tx}
}

func (r *LectureRepository) Create(lecture *model.Lecture) error {
	return r.DB.Create(lecture).Error
}

func (r *LectureRepository) Update(lecture *model.Lecture) error {
	return r.DB.Save(lecture).Error
}

func (r *LectureRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Lecture{}, id).Error
}

func (r *LectureRepository) DeleteBySection(sectionID uint) error {
	return r.DB.Where("section_id = ?", sectionID).Delete(&model.Lecture{}).Error
}

func (r *LectureRepository) DeleteByCourse(courseID uint) error {
	return r.DB.Where("course_id = ?", courseID).Delete(&model.Lecture{}).Error
}

func (r *LectureRepository) FindByID(id uint) (*model.Lecture, error) {
	var lecture model.Lecture
	err := r.DB.First(&lecture, id).Error
	return &lecture, err
}

func (r *LectureRepository) FindBySection(sectionID uint) ([]model.Lecture, error) {
	var lectures []model.Lecture
	err := r.DB.Where("section_id = ?", sectionID).Order("sort_order ASC, id ASC").Find(&lectures).Error
	return lectures, err
}

func (r *LectureRepository) FindIDsByCourse(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Lecture{}).Where("course_id = ?", courseID).Pluck("id", &ids).Error
	return ids, err
}

// CountByCourse 课程所有章节下的讲座总数（不含已删除章节）
func (r *LectureRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lecture{}).
		Joins("JOIN sections ON sections.id = lectures.section_id AND sections.deleted_at IS NULL").
		Where("lectures.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

func (r *LectureRepository) NextOrder(sectionID uint) (int, error) {
	var max sql.NullInt64
	err := r.DB.Model(&model.Lecture{}).
		Where("section_id = ?", sectionID).
		Select("MAX(sort_order)").
		Row().Scan(&max)
	if err != nil || !max.Valid {
		return 1, err
	}
	return int(max.Int64) + 1, nil
}
