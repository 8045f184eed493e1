package model

import (
	"time"
)

// swagger:model Message
type Message struct {
	BaseModel
	SenderID   uint       `gorm:"index;not null" json:"senderId"`
	ReceiverID uint       `gorm:"index;not null" json:"receiverId"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	ReadAt     *time.Time `json:"readAt"`
}

func (Message) TableName() string {
	return "messages"
}

// Conversation 会话列表项：对方用户 + 最后一条消息 + 未读数
type Conversation struct {
	User        UserSummary `json:"user"`
	LastMessage Message     `json:"lastMessage"`
	UnreadCount int64       `json:"unreadCount"`
}
