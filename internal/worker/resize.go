package worker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/pkg/queue"
	"github.com/flashframe/flashframe-backend/pkg/storage"
)

// Rendition widths. Height follows the aspect ratio.
const (
	mediumWidth    = 1200
	smallWidth     = 450
	mainImageWidth = 800
	logoWidth      = 200
)

// sizedSuffix marks branding-asset renditions; notifications for keys
// carrying it are the worker's own writes and must not be resized again.
const sizedSuffix = "-sized"

type resizeStore interface {
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	PutObject(ctx context.Context, key string, body io.Reader) error
}

type processLedger interface {
	AppendPhotoProcess(organizationID, eventID, photo string) error
}

// ResizeWorker turns uploaded originals into medium and small renditions
// and sized branding assets into their display rendition, then records
// event photos as processed.
type ResizeWorker struct {
	storage resizeStore
	events  processLedger
	logger  *zap.Logger
}

func NewResizeWorker(storage resizeStore, events processLedger, logger *zap.Logger) *ResizeWorker {
	return &ResizeWorker{storage: storage, events: events, logger: logger}
}

// Handle processes one queue message carrying S3 upload notifications.
func (w *ResizeWorker) Handle(ctx context.Context, msg queue.Message) error {
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
			if err := w.resizeAsset(ctx, key); err != nil {
				return err
			}
			continue
		}
		if err := w.resizePhoto(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (w *ResizeWorker) resizePhoto(ctx context.Context, key string) error {
	parsed, err := parsePhotoKey(key)
	if err != nil {
		w.logger.Warn("skipping unexpected key", zap.String("key", key), zap.Error(err))
		return nil
	}
	if parsed.Prefix != storage.PrefixOriginal {
		// Notifications for our own rendition writes.
		return nil
	}

	img, err := w.load(ctx, key)
	if err != nil {
		return err
	}

	renditions := []struct {
		prefix string
		width  int
	}{
		{storage.PrefixMedium, mediumWidth},
		{storage.PrefixSmall, smallWidth},
	}
	for _, r := range renditions {
		out := storage.PhotoKey(r.prefix, parsed.Organization, parsed.EventID, parsed.FileName)
		if err := w.store(ctx, out, imaging.Resize(img, r.width, 0, imaging.Lanczos)); err != nil {
			return err
		}
	}

	if err := w.events.AppendPhotoProcess(parsed.Organization, parsed.EventID, parsed.FileName); err != nil {
		return fmt.Errorf("record processed photo %s: %w", parsed.FileName, err)
	}
	return nil
}

func (w *ResizeWorker) resizeAsset(ctx context.Context, key string) error {
	parsed, err := parseAssetKey(key)
	if err != nil {
		w.logger.Warn("skipping unexpected key", zap.String("key", key), zap.Error(err))
		return nil
	}
	if strings.HasSuffix(parsed.Kind, sizedSuffix) {
		// Notifications for our own rendition writes.
		return nil
	}

	width := logoWidth
	if parsed.Kind == "mainImage" {
		width = mainImageWidth
	}

	img, err := w.load(ctx, key)
	if err != nil {
		return err
	}
	return w.store(ctx, key+sizedSuffix, imaging.Resize(img, width, 0, imaging.Lanczos))
}

func (w *ResizeWorker) load(ctx context.Context, key string) (*image.NRGBA, error) {
	body, err := w.storage.GetObject(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	defer body.Close()

	img, err := imaging.Decode(body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return imaging.Clone(img), nil
}

func (w *ResizeWorker) store(ctx context.Context, key string, img *image.NRGBA) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := w.storage.PutObject(ctx, key, &buf); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}
