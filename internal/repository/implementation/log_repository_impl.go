package implementation

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/furkantngr/ragchatbot/internal/entity"
	"github.com/furkantngr/ragchatbot/internal/model"
	"github.com/furkantngr/ragchatbot/internal/repository/contract"
)

type LogRepositoryImpl struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) contract.LogRepository {
	return &LogRepositoryImpl{db: db}
}

func (r *LogRepositoryImpl) CreateConversation(ctx context.Context, log *entity.ConversationLog) error {
	m := &model.ConversationLog{
		Id:          log.Id,
		UserQuery:   log.UserQuery,
		BotResponse: log.BotResponse,
		ContextUsed: log.ContextUsed,
		ModelName:   log.ModelName,
		IpAddress:   log.IpAddress,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *LogRepositoryImpl) CreateAdminAction(ctx context.Context, log *entity.AdminLog) error {
	var details datatypes.JSON
	if log.Details != nil {
		raw, err := json.Marshal(log.Details)
		if err == nil {
			details = raw
		}
	}
	m := &model.AdminLog{
		Id:       log.Id,
		Action:   log.Action,
		Filename: log.Filename,
		Username: log.Username,
		Details:  details,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *LogRepositoryImpl) ListAdminActions(ctx context.Context, limit int) ([]*entity.AdminLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var models []*model.AdminLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	logs := make([]*entity.AdminLog, len(models))
	for i, m := range models {
		var details map[string]interface{}
		if len(m.Details) > 0 {
			_ = json.Unmarshal(m.Details, &details)
		}
		logs[i] = &entity.AdminLog{
			Id:        m.Id,
			Action:    m.Action,
			Filename:  m.Filename,
			Username:  m.Username,
			Details:   details,
			CreatedAt: m.CreatedAt,
		}
	}
	return logs, nil
}
