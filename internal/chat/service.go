package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/bakaydmytro/team-seeker-be/internal/models"
	"github.com/bakaydmytro/team-seeker-be/internal/ws"
)

const (
	maxMessageLength    = 500 // characters, not bytes
	rateLimitWindow     = time.Minute
	rateLimitMax        = 20
	spamRepeatThreshold = 7
)

// Inbound socket event types. The dispatch below is the closed set of
// everything a connection may ask for.
const (
	EventJoinChat         = "joinChat"
	EventSendMessage      = "sendMessage"
	EventMessageDelivered = "messageDelivered"
	EventLeaveChat        = "leaveChat"
)

var (
	ErrSelfChat  = errors.New("cannot chat with yourself")
	ErrNotMember = errors.New("chat not found or access denied")
)

// ClientEvent is a single decoded frame from a connection.
type ClientEvent struct {
	Type      string `json:"type"`
	ChatID    uint   `json:"chat_id,omitempty"`
	Content   string `json:"content,omitempty"`
	MessageID uint   `json:"message_id,omitempty"`
}

type errorData struct {
	Message string `json:"message"`
}

type userData struct {
	UserID uint `json:"userId"`
}

type statusData struct {
	UserID uint   `json:"userId"`
	Status string `json:"status"`
}

type messageData struct {
	ID        uint      `json:"id"`
	SenderID  uint      `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	ChatID    uint      `json:"chat_id"`
}

type messageStatusData struct {
	MessageID uint   `json:"message_id"`
	Status    string `json:"status"`
}

// Service is the realtime chat core: it authorizes room operations against
// the Members table, runs the send pipeline, and fans events out through the
// hub. All durable state lives in the database; the hub only holds the
// in-process room subscriptions.
type Service struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewService(db *gorm.DB, hub *ws.Hub) *Service {
	return &Service{db: db, hub: hub}
}

// HandleEvent dispatches one inbound frame for the connection. Unknown event
// types are ignored; every failure is converted to a scoped event on the
// requesting client, never a dropped connection.
func (s *Service) HandleEvent(ctx context.Context, c *ws.Client, ev ClientEvent) {
	switch ev.Type {
	case EventJoinChat:
		s.JoinChat(ctx, c, ev.ChatID)
	case EventSendMessage:
		s.SendMessage(ctx, c, ev.ChatID, ev.Content)
	case EventMessageDelivered:
		s.MarkDelivered(ctx, c, ev.MessageID)
	case EventLeaveChat:
		s.LeaveChat(ctx, c, ev.ChatID)
	}
}

// Connected marks the user online and announces it to everyone. Presence is
// global, not room-scoped.
func (s *Service) Connected(ctx context.Context, c *ws.Client) {
	s.setStatus(ctx, c, models.StatusOnline)
}

// Disconnected marks the user offline unconditionally. Concurrent sessions of
// the same user are not reference-counted; the last disconnect wins.
func (s *Service) Disconnected(ctx context.Context, c *ws.Client) {
	s.setStatus(ctx, c, models.StatusOffline)
}

func (s *Service) setStatus(ctx context.Context, c *ws.Client, status string) {
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", c.UserID).
		Update("status", status).Error
	if err != nil {
		log.Printf("presence update for user %d: %v", c.UserID, err)
		return
	}
	s.hub.BroadcastAll(ws.Event{Type: "userStatusChanged", Data: statusData{UserID: c.UserID, Status: status}})
}

func (s *Service) JoinChat(ctx context.Context, c *ws.Client, chatID uint) {
	member, err := s.isMember(ctx, chatID, c.UserID)
	if err != nil {
		s.serverError(c, "join chat", err)
		return
	}
	if !member {
		s.hub.SendTo(c, ws.Event{Type: "chatError", Data: errorData{Message: "Chat not found or access denied."}})
		return
	}

	s.hub.JoinRoom(chatID, c)
	s.hub.BroadcastRoom(chatID, ws.Event{Type: "userJoined", Data: userData{UserID: c.UserID}}, c)
}

func (s *Service) LeaveChat(ctx context.Context, c *ws.Client, chatID uint) {
	member, err := s.isMember(ctx, chatID, c.UserID)
	if err != nil {
		s.serverError(c, "leave chat", err)
		return
	}
	if !member {
		s.hub.SendTo(c, ws.Event{Type: "chatError", Data: errorData{Message: "Chat not found or access denied."}})
		return
	}

	s.hub.LeaveRoom(chatID, c)
	s.hub.BroadcastRoom(chatID, ws.Event{Type: "userLeft", Data: userData{UserID: c.UserID}}, c)
}

// SendMessage runs the ordered pipeline: field presence, sliding-window rate
// limit, content policy, membership. The first failure emits a scoped error
// and nothing is persisted.
func (s *Service) SendMessage(ctx context.Context, c *ws.Client, chatID uint, content string) {
	if chatID == 0 || content == "" {
		s.hub.SendTo(c, ws.Event{Type: "messageError", Data: errorData{Message: "Chat ID and content are required."}})
		return
	}

	var recent int64
	err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("sender_id = ? AND chat_id = ? AND created_at >= ?", c.UserID, chatID, time.Now().Add(-rateLimitWindow)).
		Count(&recent).Error
	if err != nil {
		s.serverError(c, "rate limit count", err)
		return
	}
	if recent >= rateLimitMax {
		s.hub.SendTo(c, ws.Event{Type: "messageError", Data: errorData{Message: "You are sending messages too quickly. Please slow down."}})
		return
	}

	if utf8.RuneCountInString(content) > maxMessageLength || hasRepeatedWords(content) {
		s.hub.SendTo(c, ws.Event{Type: "messageError", Data: errorData{Message: "Your message looks like spam or is too long."}})
		return
	}

	member, err := s.isMember(ctx, chatID, c.UserID)
	if err != nil {
		s.serverError(c, "send membership check", err)
		return
	}
	if !member {
		s.hub.SendTo(c, ws.Event{Type: "chatError", Data: errorData{Message: "Chat not found or access denied."}})
		return
	}

	msg := models.Message{
		ChatID:   chatID,
		SenderID: c.UserID,
		Content:  content,
		Status:   models.MessageSent,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		s.serverError(c, "persist message", err)
		return
	}

	// New activity bumps the chat's updatedAt; best effort only.
	if err := s.db.WithContext(ctx).
		Model(&models.Chat{}).
		Where("id = ?", chatID).
		UpdateColumn("updated_at", time.Now()).Error; err != nil {
		log.Printf("bump chat %d updated_at: %v", chatID, err)
	}

	// Every room subscriber gets the echo, the sender's own sessions included.
	s.hub.BroadcastRoom(chatID, ws.Event{Type: "newMessage", Data: messageData{
		ID:        msg.ID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
		ChatID:    msg.ChatID,
	}}, nil)
}

// MarkDelivered advances a message from sent to delivered. An already-read
// message is left alone so status never regresses, and in that case no
// broadcast goes out either.
func (s *Service) MarkDelivered(ctx context.Context, c *ws.Client, messageID uint) {
	if messageID == 0 {
		s.hub.SendTo(c, ws.Event{Type: "messageError", Data: errorData{Message: "Message not found or access denied."}})
		return
	}

	var msg models.Message
	err := s.db.WithContext(ctx).First(&msg, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.hub.SendTo(c, ws.Event{Type: "messageError", Data: errorData{Message: "Message not found or access denied."}})
		return
	}
	if err != nil {
		s.serverError(c, "load message", err)
		return
	}

	member, err := s.isMember(ctx, msg.ChatID, c.UserID)
	if err != nil {
		s.serverError(c, "delivered membership check", err)
		return
	}
	if !member {
		s.hub.SendTo(c, ws.Event{Type: "messageError", Data: errorData{Message: "Message not found or access denied."}})
		return
	}

	res := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND status = ?", messageID, models.MessageSent).
		Update("status", models.MessageDelivered)
	if res.Error != nil {
		s.serverError(c, "update message status", res.Error)
		return
	}
	if res.RowsAffected == 0 {
		return
	}

	s.hub.BroadcastRoom(msg.ChatID, ws.Event{Type: "messageStatusUpdated", Data: messageStatusData{
		MessageID: messageID,
		Status:    models.MessageDelivered,
	}}, c)
}

// CreateOrGetChat returns the direct chat for the pair, creating it on first
// contact. The canonical pair key's unique index serializes concurrent
// creations: the loser of the race re-fetches the winner's chat.
func (s *Service) CreateOrGetChat(ctx context.Context, requesterID, recipientID uint) (*models.Chat, error) {
	if requesterID == recipientID {
		return nil, ErrSelfChat
	}

	key := pairKey(requesterID, recipientID)

	var existing models.Chat
	err := s.db.WithContext(ctx).Where("pair_key = ?", key).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	chat := models.Chat{IsGroup: false, PairKey: &key}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}
		members := []models.Member{
			{ChatID: chat.ID, UserID: requesterID},
			{ChatID: chat.ID, UserID: recipientID},
		}
		return tx.Create(&members).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Both parties created at once; the constraint picked a winner.
		if err := s.db.WithContext(ctx).Where("pair_key = ?", key).First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// History returns an ascending page of the chat's messages. Fetching history
// acknowledges everyone else's messages: anything not authored by the reader
// and not yet read flips to read in one bulk update before the page is built.
func (s *Service) History(ctx context.Context, chatID, userID uint, limit, offset int) ([]models.Message, error) {
	member, err := s.isMember(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotMember
	}

	err = s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND status <> ?", chatID, userID, models.MessageRead).
		Update("status", models.MessageRead).Error
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 30
	}
	if offset < 0 {
		offset = 0
	}

	var msgs []models.Message
	err = s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) isMember(ctx context.Context, chatID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) serverError(c *ws.Client, op string, err error) {
	log.Printf("%s (user %d): %v", op, c.UserID, err)
	s.hub.SendTo(c, ws.Event{Type: "serverError", Data: errorData{Message: "An unexpected error occurred."}})
}

func pairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
