package models

import "time"

// User status values, mutated only by the presence transitions.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Message delivery states. Transitions are monotonic: sent -> delivered -> read.
const (
	MessageSent      = "sent"
	MessageDelivered = "delivered"
	MessageRead      = "read"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:120;not null" json:"username"`
	Email        string    `gorm:"size:190;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Status       string    `gorm:"size:20;not null;default:offline" json:"status"`
	SteamID      *string   `gorm:"size:64" json:"steamid,omitempty"`
	AvatarURL    *string   `gorm:"size:255" json:"avatar_url,omitempty"`
	ProfileURL   *string   `gorm:"size:255" json:"profile_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Chat struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	IsGroup     bool    `gorm:"not null;default:false" json:"isGroup"`
	Name        *string `gorm:"size:120" json:"name,omitempty"`
	AvatarURL   *string `gorm:"size:255" json:"avatar_url,omitempty"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	// PairKey is "minUserID:maxUserID" for direct chats and NULL for groups.
	// The unique index makes at most one direct chat exist per user pair.
	PairKey   *string   `gorm:"size:64;uniqueIndex" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Members  []Member  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Messages []Message `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

type Member struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"index;not null" json:"chat_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Role      string    `gorm:"size:20;not null;default:user" json:"role"`
	CreatedAt time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"-"`
}

type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    uint      `gorm:"index;not null" json:"chat_id"`
	SenderID  uint      `gorm:"index;not null" json:"sender_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Status    string    `gorm:"size:20;not null;default:sent" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

type Friendship struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequesterID uint      `gorm:"index;not null" json:"requester_id"`
	AddresseeID uint      `gorm:"index;not null" json:"addressee_id"`
	Status      string    `gorm:"size:20;not null" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
