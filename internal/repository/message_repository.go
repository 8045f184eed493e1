package repository

import (
	"edunest_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type MessageRepository struct {
	DB *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{DB: db}
}

func (r *MessageRepository) Create(msg *model.Message) error {
	return r.DB.Create(msg).Error
}

func (r *MessageRepository) FindByIDs(ids []uint) ([]model.Message, error) {
	var messages []model.Message
	if len(ids) == 0 {
		return messages, nil
	}
	err := r.DB.Where("id IN ?", ids).Order("id DESC").Find(&messages).Error
	return messages, err
}

// Thread 两个用户之间的消息，before>0 时只取更早的消息；返回按 id 升序
func (r *MessageRepository) Thread(userID, otherID, before uint, limit int) ([]model.Message, error) {
	var messages []model.Message
	query := r.DB.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		userID, otherID, otherID, userID,
	)
	if before > 0 {
		query = query.Where("id < ?", before)
	}
	if err := query.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead 将 otherID 发给 userID 的未读消息标记为已读
func (r *MessageRepository) MarkRead(userID, otherID uint, at time.Time) (int64, error) {
	result := r.DB.Model(&model.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read_at IS NULL", otherID, userID).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}

// LastMessageIDs 每个会话对象的最后一条消息 ID
func (r *MessageRepository) LastMessageIDs(userID uint) ([]uint, error) {
	var rows []struct {
		PartnerID uint
		LastID    uint
	}
	err := r.DB.Model(&model.Message{}).
		Select("CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner_id, MAX(id) AS last_id", userID).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Group("partner_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.LastID)
	}
	return ids, nil
}

// UnreadBySender 按发送者统计发给 userID 的未读数
func (r *MessageRepository) UnreadBySender(userID uint) (map[uint]int64, error) {
	var rows []struct {
		SenderID uint
		Count    int64
	}
	err := r.DB.Model(&model.Message{}).
		Select("sender_id, COUNT(*) AS count").
		Where("receiver_id = ? AND read_at IS NULL", userID).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.Count
	}
	return counts, nil
}

func (r *MessageRepository) UnreadTotal(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Message{}).
		Where("receiver_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
