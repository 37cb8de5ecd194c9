package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/pkg/queue"
	"github.com/flashframe/flashframe-backend/pkg/storage"
)

type faceCleaner interface {
	DeleteByEvent(eventID string) error
}

type collectionDeleter interface {
	DeleteCollection(ctx context.Context, collectionID string) error
}

type prefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// CascadeWorker tears down everything a deleted event left behind: its
// face records, its recognition collection, and every stored rendition.
type CascadeWorker struct {
	faces       faceCleaner
	collections collectionDeleter
	storage     prefixDeleter
	logger      *zap.Logger
}

func NewCascadeWorker(faces faceCleaner, collections collectionDeleter, storage prefixDeleter, logger *zap.Logger) *CascadeWorker {
	return &CascadeWorker{
		faces:       faces,
		collections: collections,
		storage:     storage,
		logger:      logger,
	}
}

func (w *CascadeWorker) Handle(ctx context.Context, msg queue.Message) error {
	var payload queue.CascadeDeletePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		return fmt.Errorf("decode cascade payload: %w", err)
	}
	if payload.EventID == "" || payload.Organization == "" {
		return fmt.Errorf("incomplete cascade payload: %+v", payload)
	}

	if err := w.faces.DeleteByEvent(payload.EventID); err != nil {
		return fmt.Errorf("delete face records for %s: %w", payload.EventID, err)
	}

	if payload.Collection != "" {
		if err := w.collections.DeleteCollection(ctx, payload.Collection); err != nil {
			return fmt.Errorf("delete collection %s: %w", payload.Collection, err)
		}
	}

	for _, prefix := range []string{storage.PrefixSmall, storage.PrefixMedium, storage.PrefixOriginal} {
		p := storage.PhotoKey(prefix, payload.Organization, payload.EventID, "")
		if err := w.storage.DeletePrefix(ctx, p); err != nil {
			return fmt.Errorf("delete prefix %s: %w", p, err)
		}
	}

	w.logger.Info("event teardown complete",
		zap.String("organization", payload.Organization),
		zap.String("event", payload.EventID))
	return nil
}
