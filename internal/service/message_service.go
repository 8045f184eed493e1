package service

import (
	"edunest_backend/internal/model"
	"edunest_backend/internal/repository"
	"edunest_backend/internal/util"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxMessageLength   = 5000
	defaultThreadLimit = 50
	maxThreadLimit     = 200
)

// Notifier 实时推送，MessageHub 实现
type Notifier interface {
	PushToUsers(userIDs []uint, msg WSMessage)
}

type SendMessageInput struct {
	ReceiverID uint   `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type MessageService struct {
	MessageRepo *repository.MessageRepository
	UserRepo    *repository.UserRepository
	Notifier    Notifier
}

func NewMessageService(messageRepo *repository.MessageRepository, userRepo *repository.UserRepository, notifier Notifier) *MessageService {
	return &MessageService{
		MessageRepo: messageRepo,
		UserRepo:    userRepo,
		Notifier:    notifier,
	}
}

func (s *MessageService) push(userID uint, eventType string, data interface{}) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.PushToUsers([]uint{userID}, WSMessage{Type: eventType, Data: data})
}

func (s *MessageService) Send(senderID uint, in SendMessageInput) (*model.Message, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" || utf8.RuneCountInString(content) > maxMessageLength {
		return nil, util.ErrInvalidInput
	}
	if in.ReceiverID == senderID {
		return nil, util.ErrMessageToSelf
	}
	if _, err := s.UserRepo.FindByID(in.ReceiverID); err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}

	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		Content:    content,
	}
	if err := s.MessageRepo.Create(msg); err != nil {
		return nil, err
	}

	s.push(in.ReceiverID, EventNewMessage, msg)
	return msg, nil
}

// Conversations 每个会话对象一条，按最后一条消息倒序
func (s *MessageService) Conversations(userID uint) ([]model.Conversation, error) {
	lastIDs, err := s.MessageRepo.LastMessageIDs(userID)
	if err != nil {
		return nil, err
	}
	messages, err := s.MessageRepo.FindByIDs(lastIDs)
	if err != nil {
		return nil, err
	}

	partnerIDs := make([]uint, 0, len(messages))
	for _, m := range messages {
		partnerIDs = append(partnerIDs, partnerOf(m, userID))
	}
	users, err := s.UserRepo.FindByIDs(partnerIDs)
	if err != nil {
		return nil, err
	}
	unread, err := s.MessageRepo.UnreadBySender(userID)
	if err != nil {
		return nil, err
	}

	conversations := make([]model.Conversation, 0, len(messages))
	for _, m := range messages {
		partnerID := partnerOf(m, userID)
		user, ok := users[partnerID]
		if !ok {
			continue
		}
		conversations = append(conversations, model.Conversation{
			User:        user.Summary(),
			LastMessage: m,
			UnreadCount: unread[partnerID],
		})
	}

	sort.Slice(conversations, func(i, j int) bool {
		return conversations[i].LastMessage.ID > conversations[j].LastMessage.ID
	})
	return conversations, nil
}

func partnerOf(m model.Message, userID uint) uint {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// Thread 与某个用户的消息记录，读取时把对方发来的消息标记为已读
func (s *MessageService) Thread(userID, otherID, before uint, limit int) ([]model.Message, error) {
	if _, err := s.UserRepo.FindByID(otherID); err != nil {
		return nil, notFound(err, util.ErrUserNotFound)
	}
	if limit < 1 {
		limit = defaultThreadLimit
	}
	if limit > maxThreadLimit {
		limit = maxThreadLimit
	}

	messages, err := s.MessageRepo.Thread(userID, otherID, before, limit)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	marked, err := s.MessageRepo.MarkRead(userID, otherID, now)
	if err != nil {
		return nil, err
	}
	if marked > 0 {
		for i := range messages {
			if messages[i].ReceiverID == userID && messages[i].ReadAt == nil {
				messages[i].ReadAt = &now
			}
		}
		s.push(otherID, EventRead, map[string]interface{}{"userId": userID, "readAt": now})
	}
	return messages, nil
}

func (s *MessageService) UnreadCount(userID uint) (int64, error) {
	return s.MessageRepo.UnreadTotal(userID)
}
