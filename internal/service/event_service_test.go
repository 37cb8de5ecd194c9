package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
	"github.com/flashframe/flashframe-backend/pkg/jwt"
)

// ---- fakes ----

type fakeEventStore struct {
	mirrors map[string]string // slug -> organization
	events  map[string]*models.Event
	created []*models.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{
		mirrors: map[string]string{},
		events:  map[string]*models.Event{},
	}
}

func eventKey(org, id string) string { return org + "/" + id }

func (f *fakeEventStore) CreateWithMirror(event *models.Event) error {
	if _, taken := f.mirrors[event.ID]; taken {
		return fmt.Errorf("duplicate slug %q", event.ID)
	}
	f.mirrors[event.ID] = event.OrganizationID
	f.events[eventKey(event.OrganizationID, event.ID)] = event
	f.created = append(f.created, event)
	return nil
}

func (f *fakeEventStore) MirrorExists(slug string) (bool, error) {
	_, ok := f.mirrors[slug]
	return ok, nil
}

func (f *fakeEventStore) GetByID(org, id string) (*models.Event, error) {
	event, ok := f.events[eventKey(org, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return event, nil
}

func (f *fakeEventStore) ListByOrganization(org string) ([]models.Event, error) {
	var out []models.Event
	for _, e := range f.events {
		if e.OrganizationID == org {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEventStore) UpdateFields(org, id string, fields map[string]interface{}) error {
	event, ok := f.events[eventKey(org, id)]
	if !ok {
		return repository.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "name":
			event.Name = value.(string)
		case "event_date":
			event.EventDate = value.(string)
		case "location":
			event.Location = value.(string)
		case "photographer_name":
			event.PhotographerName = value.(string)
		case "website":
			event.Website = value.(string)
		case "instagram":
			event.Instagram = value.(string)
		case "facebook":
			event.Facebook = value.(string)
		case "is_public":
			event.IsPublic = value.(bool)
		case "images_status":
			event.ImagesStatus = value.(models.ImagesStatus)
		case "missing_photos":
			event.MissingPhotos = value.(int)
		case "number_of_photos":
			event.NumberOfPhotos = value.(int)
		case "last_updated":
			event.LastUpdated = value.(int64)
		}
	}
	return nil
}

func (f *fakeEventStore) DeleteWithMirror(org, id string) error {
	key := eventKey(org, id)
	if _, ok := f.events[key]; !ok {
		return repository.ErrNotFound
	}
	delete(f.events, key)
	delete(f.mirrors, id)
	return nil
}

func (f *fakeEventStore) SetImagesStatus(org, id string, status models.ImagesStatus) error {
	return f.UpdateFields(org, id, map[string]interface{}{"images_status": status})
}

func (f *fakeEventStore) SetSuspended(org, id string, missing int) error {
	return f.UpdateFields(org, id, map[string]interface{}{
		"images_status":  models.ImagesSuspended,
		"missing_photos": missing,
	})
}

func (f *fakeEventStore) UpdateFavorites(org, id string, photos models.StringList) error {
	event, ok := f.events[eventKey(org, id)]
	if !ok {
		return repository.ErrNotFound
	}
	event.FavoritePhotos = photos
	return nil
}

func (f *fakeEventStore) FoldProcessedPhotos(org, id string, photos []string) error {
	event, ok := f.events[eventKey(org, id)]
	if !ok {
		return repository.ErrNotFound
	}
	event.TotalPhotos += len(photos)
	event.PhotosProcess = models.StringList{}
	return nil
}

type fakeUserQuota struct {
	counts map[string]int
	limits map[string]int
}

func (f *fakeUserQuota) AppendEventCreated(org, username, eventID string, enforceLimit bool) error {
	key := org + "/" + username
	if enforceLimit && f.counts[key] >= f.limits[key] {
		return repository.ErrConditionFailed
	}
	f.counts[key]++
	return nil
}

type fakeWallet struct {
	orgs map[string]*models.Organization
}

func (f *fakeWallet) GetByID(id string) (*models.Organization, error) {
	org, ok := f.orgs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return org, nil
}

func (f *fakeWallet) DebitTokens(orgID string, amount int) error {
	org, ok := f.orgs[orgID]
	if !ok || amount <= 0 || org.Tokens < amount {
		return repository.ErrConditionFailed
	}
	org.Tokens -= amount
	return nil
}


type fakeGiftStore struct {
	gifts map[string]*models.GiftEvent
}

func giftKey(org string, id uint) string { return fmt.Sprintf("%s/%d", org, id) }

func (f *fakeGiftStore) GetByID(org string, id uint) (*models.GiftEvent, error) {
	gift, ok := f.gifts[giftKey(org, id)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return gift, nil
}

func (f *fakeGiftStore) Redeem(org string, id uint, tokens int) error {
	gift, ok := f.gifts[giftKey(org, id)]
	if !ok || gift.Status != models.GiftActive || gift.Tokens < tokens {
		return repository.ErrConditionFailed
	}
	gift.Status = models.GiftUsed
	gift.TokensUsed = tokens
	return nil
}

type fakeHandshakeStore struct {
	handshakes map[string]*models.Handshake
	used       []string
}

func (f *fakeHandshakeStore) Get(thtk string) (*models.Handshake, error) {
	h, ok := f.handshakes[thtk]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return h, nil
}

func (f *fakeHandshakeStore) MarkUsed(thtk string) error {
	h, ok := f.handshakes[thtk]
	if !ok || h.Status != models.HandshakeReady {
		return repository.ErrConditionFailed
	}
	h.Status = models.HandshakeUsed
	f.used = append(f.used, thtk)
	return nil
}

type fakeCollections struct {
	created []string
	fail    bool
}

func (f *fakeCollections) CreateCollection(_ context.Context, id string) (string, error) {
	if f.fail {
		return "", fmt.Errorf("collection backend down")
	}
	f.created = append(f.created, id)
	return id, nil
}

type fakeJobQueue struct {
	sent []interface{}
}

func (f *fakeJobQueue) Send(_ context.Context, _ string, payload interface{}) error {
	f.sent = append(f.sent, payload)
	return nil
}

type fakeQR struct{}

func (fakeQR) GenerateQRCode(string, int) ([]byte, error) { return []byte("png"), nil }

// ---- fixtures ----

type eventFixture struct {
	service    *EventService
	events     *fakeEventStore
	users      *fakeUserQuota
	wallet     *fakeWallet
	gifts      *fakeGiftStore
	handshakes *fakeHandshakeStore
	jobs       *fakeJobQueue
	claims     *jwt.AuthClaims
}

func newEventFixture() *eventFixture {
	events := newFakeEventStore()
	users := &fakeUserQuota{
		counts: map[string]int{},
		limits: map[string]int{"org-1/alice": 2},
	}
	wallet := &fakeWallet{orgs: map[string]*models.Organization{
		"org-1": {ID: "org-1", Name: "Studio One", Tokens: models.StartingTokens},
		"org-2": {ID: "org-2", Name: "Studio Two", Location: "Berlin", PhotographerName: "Bob", Tokens: 0},
	}}
	gifts := &fakeGiftStore{gifts: map[string]*models.GiftEvent{}}
	handshakes := &fakeHandshakeStore{handshakes: map[string]*models.Handshake{}}
	jobs := &fakeJobQueue{}

	svc := NewEventService(
		events, users, wallet, gifts, handshakes,
		&fakeCollections{}, jobs, fakeQR{}, "delete-queue", zap.NewNop(),
	)
	return &eventFixture{
		service:    svc,
		events:     events,
		users:      users,
		wallet:     wallet,
		gifts:      gifts,
		handshakes: handshakes,
		jobs:       jobs,
		claims: &jwt.AuthClaims{
			Organization:    "org-1",
			Username:        "alice",
			EventsLimit:     2,
			EventsLimitType: string(models.LimitNumber),
		},
	}
}

func createRequest() *models.CreateEventRequest {
	return &models.CreateEventRequest{
		EventName:    "Wedding",
		EventDate:    "2026-09-12",
		CreditsToUse: 100,
	}
}

// ---- tests ----

func TestCreateEventDebitsCreditsAndSetsBudget(t *testing.T) {
	fx := newEventFixture()

	event, err := fx.service.CreateEvent(context.Background(), fx.claims, createRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StartingTokens-100, fx.wallet.orgs["org-1"].Tokens)
	assert.Equal(t, 100, event.NumberOfPhotos)
	assert.Equal(t, models.ImagesUploading, event.ImagesStatus)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, event.ID, event.CollectionID)
}

func TestCreateEventRejectsNegativeCredits(t *testing.T) {
	fx := newEventFixture()
	req := createRequest()
	req.CreditsToUse = -5

	_, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.Status)
	assert.Equal(t, models.StartingTokens, fx.wallet.orgs["org-1"].Tokens)
}

func TestCreateEventInsufficientCredits(t *testing.T) {
	fx := newEventFixture()
	req := createRequest()
	req.CreditsToUse = models.StartingTokens + 1

	_, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 403, svcErr.Status)
	assert.Equal(t, models.ReasonLimit, svcErr.Reason)
	assert.Equal(t, models.StartingTokens, fx.wallet.orgs["org-1"].Tokens)
	assert.Empty(t, fx.events.created)
}

func TestCreateEventQuotaLimit(t *testing.T) {
	fx := newEventFixture()

	// The fixture user may create two events.
	for i := 0; i < 2; i++ {
		req := createRequest()
		req.NameURL = fmt.Sprintf("party-%d", i)
		_, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
		require.NoError(t, err)
	}

	req := createRequest()
	req.NameURL = "party-3"
	_, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 403, svcErr.Status)
	assert.Equal(t, models.ReasonLimit, svcErr.Reason)
	assert.Len(t, fx.events.created, 2)
}

func TestCreateEventUnlimitedUserIgnoresLimit(t *testing.T) {
	fx := newEventFixture()
	fx.claims.EventsLimitType = string(models.LimitUnlimited)

	for i := 0; i < 5; i++ {
		req := createRequest()
		req.NameURL = fmt.Sprintf("shoot-%d", i)
		_, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
		require.NoError(t, err)
	}
	assert.Len(t, fx.events.created, 5)
}

func TestSlugResolverAvoidsTakenSlugs(t *testing.T) {
	fx := newEventFixture()
	fx.events.mirrors["summer"] = "org-9"

	slug, err := fx.service.resolveSlug("summer")
	require.NoError(t, err)
	assert.NotEqual(t, "summer", slug)
	assert.Contains(t, slug, "summer-")

	taken, _ := fx.events.MirrorExists(slug)
	assert.False(t, taken)
}

func TestSlugResolverKeepsFreeSlug(t *testing.T) {
	fx := newEventFixture()

	slug, err := fx.service.resolveSlug("summer")
	require.NoError(t, err)
	assert.Equal(t, "summer", slug)
}

func TestCreateEventTrimsCallerSlug(t *testing.T) {
	fx := newEventFixture()
	req := createRequest()
	req.NameURL = "  gala-2026  "

	event, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	require.NoError(t, err)
	assert.Equal(t, "gala-2026", event.ID)
}

func TestCreateEventClampsWatermarkSize(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 1},
		{-3, 1},
		{10001, 1},
		{500, 500},
		{10000, 10000},
	}
	for _, tc := range cases {
		fx := newEventFixture()
		req := createRequest()
		req.WatermarkSize = tc.in

		event, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, event.WatermarkSize, "size %d", tc.in)
	}
}

func TestGiftRedemptionCopiesIssuerBranding(t *testing.T) {
	fx := newEventFixture()
	fx.gifts.gifts[giftKey("org-1", 7)] = &models.GiftEvent{
		ID:             7,
		OrganizationID: "org-1",
		Root:           "org-2",
		Tokens:         50,
		Status:         models.GiftActive,
	}

	req := createRequest()
	req.CreditsToUse = 0
	req.SelectedGiftEventID = 7
	req.SelectedGiftEventOrgID = "org-2"
	req.GiftCreditsToUse = 50

	event, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	require.NoError(t, err)

	assert.Equal(t, 50, event.NumberOfPhotos)
	assert.Equal(t, "Berlin", event.Location)
	assert.Equal(t, "Bob", event.PhotographerName)
	assert.Contains(t, event.GiftFields, "location")
	assert.Equal(t, models.GiftUsed, fx.gifts.gifts[giftKey("org-1", 7)].Status)
}

func TestGiftBrandingFallsBackToCallerFields(t *testing.T) {
	fx := newEventFixture()
	fx.gifts.gifts[giftKey("org-1", 7)] = &models.GiftEvent{
		ID:             7,
		OrganizationID: "org-1",
		Root:           "org-2",
		Tokens:         50,
		Status:         models.GiftActive,
	}

	req := createRequest()
	req.CreditsToUse = 0
	req.SelectedGiftEventID = 7
	req.SelectedGiftEventOrgID = "org-2"
	req.GiftCreditsToUse = 50
	req.Location = "Paris"
	req.Website = "https://my-own-site.example"

	event, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	require.NoError(t, err)

	// The issuer donated location and photographer name only; the
	// caller's website survives and is not locked.
	assert.Equal(t, "Berlin", event.Location)
	assert.Equal(t, "Bob", event.PhotographerName)
	assert.Equal(t, "https://my-own-site.example", event.Website)
	assert.ElementsMatch(t, models.StringList{"location", "photographerName"}, event.GiftFields)
}

func TestUsedGiftNotRedeemable(t *testing.T) {
	fx := newEventFixture()
	fx.gifts.gifts[giftKey("org-1", 7)] = &models.GiftEvent{
		ID:             7,
		OrganizationID: "org-1",
		Root:           "org-2",
		Tokens:         50,
		Status:         models.GiftUsed,
	}

	req := createRequest()
	req.SelectedGiftEventID = 7
	req.SelectedGiftEventOrgID = "org-2"
	req.GiftCreditsToUse = 10

	_, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.Status)
	assert.Empty(t, fx.events.created)
}

func TestGiftOverRedemptionRejectedWithoutMutation(t *testing.T) {
	fx := newEventFixture()
	gift := &models.GiftEvent{
		ID:             7,
		OrganizationID: "org-1",
		Root:           "org-2",
		Tokens:         50,
		Status:         models.GiftActive,
	}
	fx.gifts.gifts[giftKey("org-1", 7)] = gift

	req := createRequest()
	req.SelectedGiftEventID = 7
	req.SelectedGiftEventOrgID = "org-2"
	req.GiftCreditsToUse = 51

	_, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	require.Error(t, err)
	assert.Equal(t, models.GiftActive, gift.Status)
	assert.Zero(t, gift.TokensUsed)
}

func TestCreateEventConsumesReadyHandshake(t *testing.T) {
	fx := newEventFixture()
	fx.handshakes.handshakes["tok-1"] = &models.Handshake{
		Thtk:           "tok-1",
		OrganizationID: "org-1",
		Tokens:         200,
		Status:         models.HandshakeReady,
	}

	req := createRequest()
	req.CreditsToUse = 0
	req.Thtk = "tok-1"

	event, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	require.NoError(t, err)
	assert.Equal(t, 200, event.NumberOfPhotos)
	assert.Equal(t, []string{"tok-1"}, fx.handshakes.used)
}

func TestCreateEventRejectsPendingHandshake(t *testing.T) {
	fx := newEventFixture()
	fx.handshakes.handshakes["tok-1"] = &models.Handshake{
		Thtk:           "tok-1",
		OrganizationID: "org-1",
		Tokens:         200,
		Status:         models.HandshakePending,
	}

	req := createRequest()
	req.Thtk = "tok-1"

	_, err := fx.service.CreateEvent(context.Background(), fx.claims, req)
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.Status)
}

func TestUpdateEventRefusesGiftLockedFields(t *testing.T) {
	fx := newEventFixture()
	fx.events.events[eventKey("org-1", "gala")] = &models.Event{
		ID:             "gala",
		OrganizationID: "org-1",
		Location:       "Berlin",
		GiftFields:     models.StringList{"location"},
	}
	fx.events.mirrors["gala"] = "org-1"

	location := "Paris"
	_, err := fx.service.UpdateEvent("org-1", "gala", &models.UpdateEventRequest{Location: &location})
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, 400, svcErr.Status)
	assert.Equal(t, "Berlin", fx.events.events[eventKey("org-1", "gala")].Location)

	// Non-donated fields still update.
	name := "Gala Night"
	updated, err := fx.service.UpdateEvent("org-1", "gala", &models.UpdateEventRequest{EventName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Gala Night", updated.Name)
}

func TestDeleteEventEnqueuesCascade(t *testing.T) {
	fx := newEventFixture()
	fx.events.events[eventKey("org-1", "gala")] = &models.Event{
		ID:             "gala",
		OrganizationID: "org-1",
		CollectionID:   "gala0",
	}
	fx.events.mirrors["gala"] = "org-1"

	require.NoError(t, fx.service.DeleteEvent(context.Background(), "org-1", "gala"))

	_, err := fx.events.GetByID("org-1", "gala")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.Len(t, fx.jobs.sent, 1)

	taken, _ := fx.events.MirrorExists("gala")
	assert.False(t, taken, "slug should be reusable after delete")
}

func TestListEventsFoldsStaleProcessedPhotos(t *testing.T) {
	fx := newEventFixture()
	fx.events.events[eventKey("org-1", "gala")] = &models.Event{
		ID:             "gala",
		OrganizationID: "org-1",
		ImagesStatus:   models.ImagesDone,
		TotalPhotos:    5,
		PhotosProcess:  models.StringList{"a.jpg", "b.jpg"},
		LastUpdated:    1, // long stale
	}

	events, err := fx.service.ListEvents("org-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 7, events[0].TotalPhotos)
	assert.Empty(t, events[0].PhotosProcess)
}

func TestListEventsSuspendsStaleUploadWithMissingPhotos(t *testing.T) {
	fx := newEventFixture()
	fx.events.events[eventKey("org-1", "gala")] = &models.Event{
		ID:             "gala",
		OrganizationID: "org-1",
		ImagesStatus:   models.ImagesUploading,
		UploadTokens:   models.StringList{"a.jpg", "b.jpg", "c.jpg"},
		TotalPhotos:    1,
		PhotosProcess:  models.StringList{"b.jpg"},
		LastUpdated:    1,
	}

	events, err := fx.service.ListEvents("org-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.ImagesSuspended, events[0].ImagesStatus)
	assert.Equal(t, 1, events[0].MissingPhotos)
	assert.Equal(t, 2, events[0].TotalPhotos)
}

func TestListEventsClosesFullyProcessedStaleUpload(t *testing.T) {
	fx := newEventFixture()
	fx.events.events[eventKey("org-1", "gala")] = &models.Event{
		ID:             "gala",
		OrganizationID: "org-1",
		ImagesStatus:   models.ImagesUploading,
		UploadTokens:   models.StringList{"a.jpg", "b.jpg"},
		TotalPhotos:    2,
		PhotosProcess:  models.StringList{},
		LastUpdated:    1,
	}

	events, err := fx.service.ListEvents("org-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.ImagesDone, events[0].ImagesStatus)
	assert.Zero(t, events[0].MissingPhotos)
}

func TestListEventsLeavesFreshEventsAlone(t *testing.T) {
	fx := newEventFixture()

	event, err := fx.service.CreateEvent(context.Background(), fx.claims, createRequest())
	require.NoError(t, err)

	listed, err := fx.service.ListEvents("org-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, event.ImagesStatus, listed[0].ImagesStatus)
}

func TestAddImagesRaisesBudgetAndReopensUploads(t *testing.T) {
	fx := newEventFixture()
	fx.events.events[eventKey("org-1", "gala")] = &models.Event{
		ID:             "gala",
		OrganizationID: "org-1",
		NumberOfPhotos: 100,
		ImagesStatus:   models.ImagesDone,
	}

	event, err := fx.service.AddImages("org-1", &models.AddImagesRequest{
		ID:           "gala",
		CreditsToUse: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 150, event.NumberOfPhotos)
	assert.Equal(t, models.ImagesUploading, event.ImagesStatus)
	assert.Equal(t, models.StartingTokens-50, fx.wallet.orgs["org-1"].Tokens)
}

func TestUpdateFavoritesSetSemantics(t *testing.T) {
	fx := newEventFixture()
	fx.events.events[eventKey("org-1", "gala")] = &models.Event{
		ID:             "gala",
		OrganizationID: "org-1",
		FavoritePhotos: models.StringList{"a.jpg", "b.jpg"},
	}

	event, err := fx.service.UpdateFavorites("org-1", "gala", &models.FavoritePhotosRequest{
		PhotosToAdd:    []string{"b.jpg", "c.jpg"},
		PhotosToRemove: []string{"a.jpg"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b.jpg", "c.jpg"}, []string(event.FavoritePhotos))
}
