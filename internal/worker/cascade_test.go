package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/pkg/queue"
)

// teardownLog records every teardown call in order so tests can assert
// that face records go before the collection and the object prefixes.
type teardownLog struct {
	ops []string
}

func (l *teardownLog) DeleteByEvent(eventID string) error {
	l.ops = append(l.ops, "faces:"+eventID)
	return nil
}

func (l *teardownLog) DeleteCollection(_ context.Context, collectionID string) error {
	l.ops = append(l.ops, "collection:"+collectionID)
	return nil
}

func (l *teardownLog) DeletePrefix(_ context.Context, prefix string) error {
	l.ops = append(l.ops, "prefix:"+prefix)
	return nil
}

func cascadeMessage(t *testing.T, payload queue.CascadeDeletePayload) queue.Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return queue.Message{ID: "m1", Body: string(body)}
}

func TestCascadeTearsDownFacesCollectionAndPrefixes(t *testing.T) {
	log := &teardownLog{}
	w := NewCascadeWorker(log, log, log, zap.NewNop())

	msg := cascadeMessage(t, queue.CascadeDeletePayload{
		Organization: "org-1",
		EventID:      "gala",
		Collection:   "gala-col",
	})
	require.NoError(t, w.Handle(context.Background(), msg))

	assert.Equal(t, []string{
		"faces:gala",
		"collection:gala-col",
		"prefix:small/org-1/gala/",
		"prefix:medium/org-1/gala/",
		"prefix:original/org-1/gala/",
	}, log.ops)
}

func TestCascadeSkipsAbsentCollection(t *testing.T) {
	log := &teardownLog{}
	w := NewCascadeWorker(log, log, log, zap.NewNop())

	msg := cascadeMessage(t, queue.CascadeDeletePayload{
		Organization: "org-1",
		EventID:      "gala",
	})
	require.NoError(t, w.Handle(context.Background(), msg))

	assert.Equal(t, []string{
		"faces:gala",
		"prefix:small/org-1/gala/",
		"prefix:medium/org-1/gala/",
		"prefix:original/org-1/gala/",
	}, log.ops)
}

func TestCascadeRejectsIncompletePayload(t *testing.T) {
	log := &teardownLog{}
	w := NewCascadeWorker(log, log, log, zap.NewNop())

	msg := cascadeMessage(t, queue.CascadeDeletePayload{Organization: "org-1"})
	assert.Error(t, w.Handle(context.Background(), msg))
	assert.Empty(t, log.ops)
}
