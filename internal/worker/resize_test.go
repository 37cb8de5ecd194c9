package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/pkg/queue"
)

type memoryStore struct {
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) GetObject(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, assert.AnError
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryStore) PutObject(_ context.Context, key string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

type memoryLedger struct {
	processed []string
}

func (m *memoryLedger) AppendPhotoProcess(_, _, photo string) error {
	m.processed = append(m.processed, photo)
	return nil
}

func encodeTestImage(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := imaging.New(width, height, color.White)
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func s3Message(t *testing.T, keys ...string) queue.Message {
	t.Helper()
	type object struct {
		Key string `json:"key"`
	}
	type bucket struct {
		Name string `json:"name"`
	}
	type s3 struct {
		Bucket bucket `json:"bucket"`
		Object object `json:"object"`
	}
	type record struct {
		S3 s3 `json:"s3"`
	}
	var records []record
	for _, key := range keys {
		records = append(records, record{S3: s3{Bucket: bucket{Name: "photos"}, Object: object{Key: key}}})
	}
	body, err := json.Marshal(map[string]interface{}{"Records": records})
	require.NoError(t, err)
	return queue.Message{ID: "m1", Body: string(body)}
}

func decodedWidth(t *testing.T, data []byte) int {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx()
}

func TestResizeWritesMediumAndSmallRenditions(t *testing.T) {
	store := newMemoryStore()
	ledger := &memoryLedger{}
	store.objects["original/org-1/gala/a.jpg"] = encodeTestImage(t, 2400, 1600)

	w := NewResizeWorker(store, ledger, zap.NewNop())
	require.NoError(t, w.Handle(context.Background(), s3Message(t, "original/org-1/gala/a.jpg")))

	medium, ok := store.objects["medium/org-1/gala/a.jpg"]
	require.True(t, ok)
	assert.Equal(t, mediumWidth, decodedWidth(t, medium))

	small, ok := store.objects["small/org-1/gala/a.jpg"]
	require.True(t, ok)
	assert.Equal(t, smallWidth, decodedWidth(t, small))

	assert.Equal(t, []string{"a.jpg"}, ledger.processed)
}

func TestResizeSkipsRenditionNotifications(t *testing.T) {
	store := newMemoryStore()
	ledger := &memoryLedger{}
	store.objects["medium/org-1/gala/a.jpg"] = encodeTestImage(t, 1200, 800)

	w := NewResizeWorker(store, ledger, zap.NewNop())
	require.NoError(t, w.Handle(context.Background(), s3Message(t, "medium/org-1/gala/a.jpg")))

	_, wrote := store.objects["small/org-1/gala/a.jpg"]
	assert.False(t, wrote)
	assert.Empty(t, ledger.processed)
}

func TestResizeAssetUsesKindSpecificWidth(t *testing.T) {
	store := newMemoryStore()
	store.objects["organization-assets/org-1/mainImage"] = encodeTestImage(t, 1600, 900)
	store.objects["organization-assets/org-1/logo"] = encodeTestImage(t, 1600, 900)

	w := NewResizeWorker(store, &memoryLedger{}, zap.NewNop())
	require.NoError(t, w.Handle(context.Background(), s3Message(t,
		"organization-assets/org-1/mainImage",
		"organization-assets/org-1/logo",
	)))

	assert.Equal(t, mainImageWidth, decodedWidth(t, store.objects["organization-assets/org-1/mainImage-sized"]))
	assert.Equal(t, logoWidth, decodedWidth(t, store.objects["organization-assets/org-1/logo-sized"]))
}

func TestResizeAssetIgnoresOwnRenditions(t *testing.T) {
	store := newMemoryStore()
	store.objects["organization-assets/org-1/logo-sized"] = encodeTestImage(t, logoWidth, 100)

	w := NewResizeWorker(store, &memoryLedger{}, zap.NewNop())
	require.NoError(t, w.Handle(context.Background(), s3Message(t, "organization-assets/org-1/logo-sized")))

	_, wrote := store.objects["organization-assets/org-1/logo-sized-sized"]
	assert.False(t, wrote)
	assert.Len(t, store.objects, 1)
}
