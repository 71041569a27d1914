package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/furkantngr/ragchatbot/internal/dto"
	"github.com/furkantngr/ragchatbot/internal/entity"
	"github.com/furkantngr/ragchatbot/internal/pkg/logger"
	"github.com/furkantngr/ragchatbot/internal/repository/contract"
	"github.com/furkantngr/ragchatbot/pkg/rag"
	"github.com/furkantngr/ragchatbot/pkg/rag/prompt"
	"github.com/furkantngr/ragchatbot/pkg/refresh"
	"github.com/furkantngr/ragchatbot/pkg/settings"
)

type IAdminService interface {
	ListStaging() ([]string, error)
	UploadStaging(filename string, content io.Reader, username string) (string, error)
	DeleteStaging(filename, username string) error
	ListProduction() ([]string, error)
	Unpublish(ctx context.Context, filename, username string) error
	Publish(ctx context.Context, filename, username string) error
	GetPrompt(mode string) string
	SavePrompt(ctx context.Context, mode, content, username string) error
	ModelInfo() (string, []string)
	SetModel(ctx context.Context, model, username string) error
	RecentActions(ctx context.Context, limit int) ([]*entity.AdminLog, error)
	Refresh(ctx context.Context) error
}

type adminService struct {
	stagingPath string
	livePath    string
	engine      *rag.Engine
	prompts     *prompt.Store
	settings    *settings.Store
	notifier    *refresh.Notifier
	logs        contract.LogRepository
	pubSub      *gochannel.GoChannel
	log         logger.ILogger
}

func NewAdminService(
	stagingPath, livePath string,
	engine *rag.Engine,
	prompts *prompt.Store,
	settingsStore *settings.Store,
	notifier *refresh.Notifier,
	logs contract.LogRepository,
	pubSub *gochannel.GoChannel,
	log logger.ILogger,
) IAdminService {
	return &adminService{
		stagingPath: stagingPath,
		livePath:    livePath,
		engine:      engine,
		prompts:     prompts,
		settings:    settingsStore,
		notifier:    notifier,
		logs:        logs,
		pubSub:      pubSub,
		log:         log,
	}
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			files = append(files, e.Name())
		}
	}
	// Newest uploads first: timestamped names sort naturally.
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

func (s *adminService) ListStaging() ([]string, error) {
	return listPDFs(s.stagingPath)
}

func (s *adminService) ListProduction() ([]string, error) {
	return listPDFs(s.livePath)
}

// UploadStaging stores the upload under a timestamped name so repeated
// uploads of the same document never collide. Returns the stored name.
func (s *adminService) UploadStaging(filename string, content io.Reader, username string) (string, error) {
	if err := os.MkdirAll(s.stagingPath, 0o755); err != nil {
		return "", fmt.Errorf("ensure staging directory: %w", err)
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	stamp := time.Now().Format("02.01.2006-15.04.05")
	storedName := fmt.Sprintf("%s_%s%s", base, stamp, ext)

	dst, err := os.Create(filepath.Join(s.stagingPath, storedName))
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		return "", fmt.Errorf("write staging file: %w", err)
	}

	s.logAdmin(context.Background(), "upload", storedName, username, nil)
	return storedName, nil
}

// DeleteStaging removes a pending document permanently.
func (s *adminService) DeleteStaging(filename, username string) error {
	path := filepath.Join(s.stagingPath, filepath.Base(filename))
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found in staging: %s", filename)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete staging file: %w", err)
	}
	s.logAdmin(context.Background(), "delete_draft", filename, username, nil)
	return nil
}

// Unpublish moves a live document back to staging (never deletes it),
// drops its chunks from the index, and signals peers. The refresh
// broadcast is best-effort: a dead peer does not fail the unpublish.
func (s *adminService) Unpublish(ctx context.Context, filename, username string) error {
	name := filepath.Base(filename)
	prodFile := filepath.Join(s.livePath, name)
	stagingTarget := filepath.Join(s.stagingPath, name)

	if _, err := os.Stat(prodFile); err != nil {
		return fmt.Errorf("file not found in production: %s", name)
	}
	if err := os.Rename(prodFile, stagingTarget); err != nil {
		return fmt.Errorf("move to staging: %w", err)
	}

	if store := s.engine.Store(); store != nil {
		if err := store.DeleteSource(ctx, name); err != nil {
			s.log.Error("admin", "could not drop chunks for unpublished document", map[string]interface{}{
				"file":  name,
				"error": err.Error(),
			})
		}
	}

	s.logAdmin(ctx, "unpublish", name, username, nil)
	go s.notifier.Broadcast(context.Background())
	return nil
}

// Publish moves an approved document into the live directory and
// returns immediately; the embed+index phase and the peer notification
// run from the task queue so the caller never waits on the model.
func (s *adminService) Publish(ctx context.Context, filename, username string) error {
	name := filepath.Base(filename)
	stagingFile := filepath.Join(s.stagingPath, name)
	prodFile := filepath.Join(s.livePath, name)

	if _, err := os.Stat(stagingFile); err != nil {
		return fmt.Errorf("file not found in staging: %s", name)
	}
	if err := os.Rename(stagingFile, prodFile); err != nil {
		return fmt.Errorf("move to production: %w", err)
	}

	s.logAdmin(ctx, "process", name, username, nil)

	payload, err := json.Marshal(dto.DocumentPublishedMessage{
		Path:     prodFile,
		Filename: name,
		Username: username,
	})
	if err != nil {
		return fmt.Errorf("marshal publish task: %w", err)
	}
	wm := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(dto.TopicDocumentPublished, wm); err != nil {
		// The file is already live; the next reinitialization will not
		// pick it up automatically, so this is worth a loud log.
		s.log.Error("admin", "could not enqueue ingestion task", map[string]interface{}{
			"file":  name,
			"error": err.Error(),
		})
	}
	return nil
}

func (s *adminService) GetPrompt(mode string) string {
	return s.prompts.Load(prompt.ParseMode(mode))
}

// SavePrompt persists the template, reinitializes the local session and
// signals peers so the edit takes effect everywhere.
func (s *adminService) SavePrompt(ctx context.Context, mode, content, username string) error {
	m := prompt.ParseMode(mode)
	if err := s.prompts.Save(m, content); err != nil {
		return err
	}
	s.logAdmin(ctx, "update_prompt_"+string(m), "", username, nil)

	go s.notifier.Broadcast(context.Background())
	if err := s.engine.Initialize(ctx); err != nil {
		s.log.Error("admin", "local session refresh failed after prompt edit", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

func (s *adminService) ModelInfo() (string, []string) {
	return s.settings.ActiveModel(), s.settings.AvailableModels()
}

// SetModel persists the new active model, signals peers, and refreshes
// the admin-side session too.
func (s *adminService) SetModel(ctx context.Context, model, username string) error {
	if err := s.settings.SetActiveModel(model); err != nil {
		return err
	}
	s.logAdmin(ctx, "change_model", model, username, nil)

	go s.notifier.Broadcast(context.Background())
	if err := s.engine.Initialize(ctx); err != nil {
		s.log.Error("admin", "local session refresh failed after model change", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

// Refresh reinitializes the admin-side session on a peer signal.
func (s *adminService) Refresh(ctx context.Context) error {
	return s.engine.Initialize(ctx)
}

func (s *adminService) RecentActions(ctx context.Context, limit int) ([]*entity.AdminLog, error) {
	return s.logs.ListAdminActions(ctx, limit)
}

// logAdmin is best-effort: an audit failure never fails the operation.
func (s *adminService) logAdmin(ctx context.Context, action, filename, username string, details map[string]interface{}) {
	entry := &entity.AdminLog{
		Id:       uuid.New(),
		Action:   action,
		Filename: filename,
		Username: username,
		Details:  details,
	}
	if err := s.logs.CreateAdminAction(ctx, entry); err != nil {
		s.log.Error("admin", "could not persist admin action", map[string]interface{}{
			"action": action,
			"error":  err.Error(),
		})
	}
}
