package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
	"github.com/flashframe/flashframe-backend/pkg/storage"
)

// galleryPageSize is how many photos one public gallery page carries.
const galleryPageSize = 20

type uploadLedger interface {
	GetByID(organizationID, eventID string) (*models.Event, error)
	GetMirror(slug string) (*models.EventMirror, error)
	ReserveUploadToken(organizationID, eventID, token string) error
	UpdateFields(organizationID, eventID string, fields map[string]interface{}) error
}

type objectStore interface {
	PresignPut(ctx context.Context, key string, size int64) (string, error)
	ListPage(ctx context.Context, prefix, marker string, maxKeys int32) ([]string, string, error)
	DeleteObjects(ctx context.Context, keys []string) error
}

type faceIndex interface {
	DeleteByImage(eventID, image string) error
}

type PhotoService struct {
	events  uploadLedger
	storage objectStore
	faces   faceIndex
	logger  *zap.Logger
}

func NewPhotoService(events uploadLedger, storage objectStore, faces faceIndex, logger *zap.Logger) *PhotoService {
	return &PhotoService{events: events, storage: storage, faces: faces, logger: logger}
}

// PresignUploads reserves an upload slot per file and returns a presigned
// PUT URL for each reservation. Hitting the photo budget stops the rest of
// the batch; a duplicate file name only fails that file. The per-file
// outcome carries a machine-readable reason so the client can react
// without parsing messages.
func (s *PhotoService) PresignUploads(ctx context.Context, organizationID, eventID string, req *models.PresignRequest) (*models.PresignResponse, error) {
	if len(req.Files) == 0 || len(req.Files) > models.MaxPresignFiles {
		return nil, NewError(400, "between 1 and 20 files per request")
	}
	for _, file := range req.Files {
		if file.FileName == "" || file.FileSize <= 0 || file.FileSize > models.MaxPhotoSize {
			return nil, NewError(400, "invalid file name or size")
		}
	}

	if _, err := s.events.GetByID(organizationID, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(400, "event not found")
		}
		return nil, err
	}

	resp := &models.PresignResponse{Success: true}
	for i, file := range req.Files {
		err := s.events.ReserveUploadToken(organizationID, eventID, file.FileName)
		if errors.Is(err, repository.ErrUploadLimit) {
			// Out of budget; every remaining file would fail the same way.
			for _, rest := range req.Files[i:] {
				resp.Results = append(resp.Results, models.PresignResult{
					Err:      true,
					FileName: rest.FileName,
					Reason:   models.ReasonLimit,
				})
			}
			resp.Err = true
			break
		}
		if errors.Is(err, repository.ErrUploadDuplicate) {
			resp.Results = append(resp.Results, models.PresignResult{
				Err:      true,
				FileName: file.FileName,
				Reason:   models.ReasonDuplicate,
			})
			resp.Err = true
			continue
		}
		if err != nil {
			return nil, err
		}

		key := storage.PhotoKey(storage.PrefixOriginal, organizationID, eventID, file.FileName)
		url, err := s.storage.PresignPut(ctx, key, file.FileSize)
		if err != nil {
			s.logger.Error("presign failed", zap.String("key", key), zap.Error(err))
			resp.Results = append(resp.Results, models.PresignResult{
				Err:      true,
				FileName: file.FileName,
				Reason:   models.ReasonPresign,
			})
			resp.Err = true
			continue
		}

		resp.Results = append(resp.Results, models.PresignResult{
			Success:    true,
			FileName:   file.FileName,
			PresignURL: url,
		})
	}
	return resp, nil
}

// PublicGallery serves a page of small renditions for a public event,
// addressed by slug alone.
func (s *PhotoService) PublicGallery(ctx context.Context, slug, marker string) (*models.GalleryPage, error) {
	mirror, err := s.events.GetMirror(slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(400, "event not found")
	}
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(mirror.BelongsTo, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(400, "event not found")
	}
	if err != nil {
		return nil, err
	}
	if !event.IsPublic {
		return nil, NewError(400, "event is not public")
	}

	prefix := storage.PhotoKey(storage.PrefixSmall, mirror.BelongsTo, slug, "")
	keys, next, err := s.storage.ListPage(ctx, prefix, marker, galleryPageSize)
	if err != nil {
		return nil, err
	}

	return &models.GalleryPage{
		Photos:  keys,
		LastKey: next,
		Total:   event.TotalPhotos,
	}, nil
}

// DeletePhotos removes the named photos across every rendition, drops
// their face records and settles the event's photo count.
func (s *PhotoService) DeletePhotos(ctx context.Context, organizationID string, req *models.DeletePhotosRequest) error {
	event, err := s.events.GetByID(organizationID, req.EventID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(400, "event not found")
	}
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(req.Photos)*3)
	for _, photo := range req.Photos {
		for _, prefix := range []string{storage.PrefixOriginal, storage.PrefixMedium, storage.PrefixSmall} {
			keys = append(keys, storage.PhotoKey(prefix, organizationID, req.EventID, photo))
		}
	}
	if err := s.storage.DeleteObjects(ctx, keys); err != nil {
		return err
	}

	for _, photo := range req.Photos {
		if err := s.faces.DeleteByImage(req.EventID, photo); err != nil {
			s.logger.Error("face record delete failed",
				zap.String("event", req.EventID),
				zap.String("photo", photo),
				zap.Error(err))
		}
	}

	remaining := event.TotalPhotos - len(req.Photos)
	if remaining < 0 {
		remaining = 0
	}
	return s.events.UpdateFields(organizationID, req.EventID, map[string]interface{}{
		"total_photos": remaining,
		"last_updated": time.Now().Unix(),
	})
}
