package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConversationLog struct {
	Id          uuid.UUID
	UserQuery   string
	BotResponse string
	ContextUsed string
	ModelName   string
	IpAddress   string
	CreatedAt   time.Time
}

type AdminLog struct {
	Id        uuid.UUID
	Action    string
	Filename  string
	Username  string
	Details   map[string]interface{}
	CreatedAt time.Time
}
