package worker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
	"github.com/flashframe/flashframe-backend/pkg/queue"
	"github.com/flashframe/flashframe-backend/pkg/recognition"
	"github.com/flashframe/flashframe-backend/pkg/storage"
)

type eventReader interface {
	GetByID(organizationID, eventID string) (*models.Event, error)
}

type faceWriter interface {
	CreateBatch(faces []models.FaceRecord) error
}

type faceIndexer interface {
	IndexFaces(ctx context.Context, collectionID, bucket, key string) ([]recognition.Face, error)
}

type objectDeleter interface {
	DeleteObject(ctx context.Context, key string) error
}

// FaceIndexWorker indexes faces in uploaded originals against the owning
// event's collection and records one row per detected face. Objects the
// recognition service cannot read are removed from the bucket.
type FaceIndexWorker struct {
	events  eventReader
	faces   faceWriter
	indexer faceIndexer
	storage objectDeleter
	logger  *zap.Logger
}

func NewFaceIndexWorker(events eventReader, faces faceWriter, indexer faceIndexer, storage objectDeleter, logger *zap.Logger) *FaceIndexWorker {
	return &FaceIndexWorker{
		events:  events,
		faces:   faces,
		indexer: indexer,
		storage: storage,
		logger:  logger,
	}
}

func (w *FaceIndexWorker) Handle(ctx context.Context, msg queue.Message) error {
	records, err := queue.ParseS3Records(msg.Body)
	if err != nil {
		return err
	}

	for _, record := range records {
		key, err := decodeKey(record.S3.Object.Key)
		if err != nil {
			w.logger.Warn("skipping undecodable key", zap.String("raw", record.S3.Object.Key), zap.Error(err))
			continue
		}
		if isAssetKey(key) {
			continue
		}
		if err := w.index(ctx, record.S3.Bucket.Name, key); err != nil {
			return err
		}
	}
	return nil
}

func (w *FaceIndexWorker) index(ctx context.Context, bucket, key string) error {
	parsed, err := parsePhotoKey(key)
	if err != nil {
		w.logger.Warn("skipping unexpected key", zap.String("key", key), zap.Error(err))
		return nil
	}
	if parsed.Prefix != storage.PrefixOriginal {
		return nil
	}

	event, err := w.events.GetByID(parsed.Organization, parsed.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		// Event deleted while the message was in flight.
		w.logger.Warn("event gone, skipping face index", zap.String("event", parsed.EventID))
		return nil
	}
	if err != nil {
		return err
	}

	faces, err := w.indexer.IndexFaces(ctx, event.CollectionID, bucket, key)
	if recognition.IsInvalidImage(err) {
		w.logger.Warn("removing unreadable upload", zap.String("key", key))
		return w.storage.DeleteObject(ctx, key)
	}
	if err != nil {
		return fmt.Errorf("index faces for %s: %w", key, err)
	}

	records := make([]models.FaceRecord, 0, len(faces))
	for _, face := range faces {
		records = append(records, models.FaceRecord{
			FaceID:    face.FaceID,
			EventID:   parsed.EventID,
			Image:     parsed.FileName,
			ExpiresAt: event.ExpiresAt,
		})
	}
	return w.faces.CreateBatch(records)
}
