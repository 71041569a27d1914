package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConversationLog struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserQuery   string    `gorm:"type:text"`
	BotResponse string    `gorm:"type:text"`
	ContextUsed string    `gorm:"type:text"`
	ModelName   string    `gorm:"type:text"`
	IpAddress   string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

func (ConversationLog) TableName() string {
	return "conversation_logs"
}

type AdminLog struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Action    string         `gorm:"type:text;not null;index"`
	Filename  string         `gorm:"type:text"`
	Username  string         `gorm:"type:text"`
	Details   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}
