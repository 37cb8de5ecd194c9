package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
	"github.com/flashframe/flashframe-backend/pkg/jwt"
	"github.com/flashframe/flashframe-backend/pkg/queue"
	"github.com/flashframe/flashframe-backend/pkg/utils"
)

const (
	// slugAttempts bounds slug collision retries.
	slugAttempts = 10

	// staleAfter is how long an event may sit untouched before list
	// reconciliation settles its counters.
	staleAfter = 3 * time.Minute
)

type eventStore interface {
	CreateWithMirror(event *models.Event) error
	MirrorExists(slug string) (bool, error)
	GetByID(organizationID, eventID string) (*models.Event, error)
	ListByOrganization(organizationID string) ([]models.Event, error)
	UpdateFields(organizationID, eventID string, fields map[string]interface{}) error
	DeleteWithMirror(organizationID, eventID string) error
	SetImagesStatus(organizationID, eventID string, status models.ImagesStatus) error
	SetSuspended(organizationID, eventID string, missing int) error
	UpdateFavorites(organizationID, eventID string, photos models.StringList) error
	FoldProcessedPhotos(organizationID, eventID string, photos []string) error
}

type userQuota interface {
	AppendEventCreated(organizationID, username, eventID string, enforceLimit bool) error
}

type organizationWallet interface {
	GetByID(id string) (*models.Organization, error)
	DebitTokens(orgID string, amount int) error
}

type giftStore interface {
	GetByID(organizationID string, giftID uint) (*models.GiftEvent, error)
	Redeem(organizationID string, giftID uint, tokens int) error
}

type handshakeStore interface {
	Get(thtk string) (*models.Handshake, error)
	MarkUsed(thtk string) error
}

type faceCollections interface {
	CreateCollection(ctx context.Context, collectionID string) (string, error)
}

type jobQueue interface {
	Send(ctx context.Context, queueURL string, payload interface{}) error
}

type qrGenerator interface {
	GenerateQRCode(eventID string, size int) ([]byte, error)
}

type EventService struct {
	events         eventStore
	users          userQuota
	orgs           organizationWallet
	gifts          giftStore
	handshakes     handshakeStore
	collections    faceCollections
	jobs           jobQueue
	qr             qrGenerator
	deleteQueueURL string
	logger         *zap.Logger
}

func NewEventService(
	events eventStore,
	users userQuota,
	orgs organizationWallet,
	gifts giftStore,
	handshakes handshakeStore,
	collections faceCollections,
	jobs jobQueue,
	qr qrGenerator,
	deleteQueueURL string,
	logger *zap.Logger,
) *EventService {
	return &EventService{
		events:         events,
		users:          users,
		orgs:           orgs,
		gifts:          gifts,
		handshakes:     handshakes,
		collections:    collections,
		jobs:           jobs,
		qr:             qr,
		deleteQueueURL: deleteQueueURL,
		logger:         logger,
	}
}

// Watermark sizes outside 1..10000 fall back to the default.
func clampWatermarkSize(size int) int {
	if size < 1 || size > 10000 {
		return 1
	}
	return size
}

// resolveSlug returns a slug that is not present in the mirror table at
// probe time. A caller-supplied slug gets a short random suffix on
// collision; a generated slug is replaced wholesale. Gives up after a
// bounded number of attempts so a hot slug cannot spin forever.
func (s *EventService) resolveSlug(requested string) (string, error) {
	callerSupplied := requested != ""
	slug := requested
	if !callerSupplied {
		slug = utils.NewSlug()
	}

	for attempt := 0; attempt < slugAttempts; attempt++ {
		taken, err := s.events.MirrorExists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		if callerSupplied {
			slug = requested + "-" + utils.SlugSuffix()
		} else {
			slug = utils.NewSlug()
		}
	}
	return "", NewError(400, "event name is not available")
}

// redeemGift validates and commits the gift, and returns the issuing
// organization's branding defaults plus the donated field names.
func (s *EventService) redeemGift(claims *jwt.AuthClaims, req *models.CreateEventRequest) (*models.GiftDefaults, models.StringList, error) {
	gift, err := s.gifts.GetByID(claims.Organization, req.SelectedGiftEventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, NewError(400, "gift not found")
	}
	if err != nil {
		return nil, nil, err
	}
	if gift.Root != req.SelectedGiftEventOrgID {
		return nil, nil, NewError(400, "gift not found")
	}
	if gift.Status != models.GiftActive {
		return nil, nil, NewError(400, "gift cannot be redeemed")
	}
	if req.GiftCreditsToUse <= 0 || req.GiftCreditsToUse > gift.Tokens {
		return nil, nil, NewError(400, "gift cannot be redeemed")
	}

	issuer, err := s.orgs.GetByID(gift.Root)
	if err != nil {
		return nil, nil, err
	}

	if err := s.gifts.Redeem(claims.Organization, req.SelectedGiftEventID, req.GiftCreditsToUse); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, nil, NewError(400, "gift cannot be redeemed")
		}
		return nil, nil, err
	}

	defaults := &models.GiftDefaults{
		Name:             issuer.Name,
		Location:         issuer.Location,
		PhotographerName: issuer.PhotographerName,
		Website:          issuer.Website,
		Instagram:        issuer.Instagram,
		Facebook:         issuer.Facebook,
		Logo:             issuer.Logo,
		MainImage:        issuer.MainImage,
	}

	// Only fields the issuer actually donated get locked on the event.
	donated := models.StringList{}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"location", defaults.Location},
		{"photographerName", defaults.PhotographerName},
		{"website", defaults.Website},
		{"instagram", defaults.Instagram},
		{"facebook", defaults.Facebook},
	} {
		if field.value != "" {
			donated = append(donated, field.name)
		}
	}
	return defaults, donated, nil
}

// CreateEvent runs the provisioning workflow: slug resolution, optional
// gift redemption, the per-user quota increment, the optional payment
// handshake, the credit debit, face collection provisioning and finally
// the record write. Each step is an independent conditional write; a
// failure aborts the sequence where it stands.
func (s *EventService) CreateEvent(ctx context.Context, claims *jwt.AuthClaims, req *models.CreateEventRequest) (*models.Event, error) {
	if req.CreditsToUse < 0 || req.GiftCreditsToUse < 0 {
		return nil, NewError(400, "credits must not be negative")
	}

	slug, err := s.resolveSlug(strings.TrimSpace(req.NameURL))
	if err != nil {
		return nil, err
	}

	var giftDefaults *models.GiftDefaults
	var giftFields models.StringList
	giftTokens := 0
	giftID := ""
	if req.SelectedGiftEventID != 0 {
		giftDefaults, giftFields, err = s.redeemGift(claims, req)
		if err != nil {
			return nil, err
		}
		giftTokens = req.GiftCreditsToUse
		giftID = strconv.FormatUint(uint64(req.SelectedGiftEventID), 10)
	}

	enforceLimit := claims.EventsLimitType == string(models.LimitNumber)
	if err := s.users.AppendEventCreated(claims.Organization, claims.Username, slug, enforceLimit); err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, NewReasonError(403, "events limit reached", models.ReasonLimit)
		}
		s.logger.Error("event quota update failed", zap.String("username", claims.Username), zap.Error(err))
		return nil, NewReasonError(502, "could not create event", models.ReasonUnknown)
	}

	handshakeTokens := 0
	if req.Thtk != "" {
		handshake, err := s.handshakes.Get(req.Thtk)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(400, "payment not found")
		}
		if err != nil {
			return nil, err
		}
		if handshake.Status != models.HandshakeReady || handshake.OrganizationID != claims.Organization {
			return nil, NewError(400, "payment not confirmed")
		}
		handshakeTokens = handshake.Tokens
	}

	if req.CreditsToUse > 0 {
		if err := s.orgs.DebitTokens(claims.Organization, req.CreditsToUse); err != nil {
			if errors.Is(err, repository.ErrConditionFailed) {
				return nil, NewReasonError(403, "not enough credits", models.ReasonLimit)
			}
			return nil, err
		}
	}

	collectionID, err := s.collections.CreateCollection(ctx, slug)
	if err != nil {
		s.logger.Error("collection provisioning failed", zap.String("event", slug), zap.Error(err))
		return nil, NewError(502, "could not provision event resources")
	}

	now := time.Now()
	event := &models.Event{
		ID:                 slug,
		OrganizationID:     claims.Organization,
		Username:           claims.Username,
		Name:               req.EventName,
		EventDate:          req.EventDate,
		Location:           req.Location,
		PhotographerName:   req.PhotographerName,
		Website:            req.Website,
		Instagram:          req.Instagram,
		Facebook:           req.Facebook,
		NumberOfPhotos:     giftTokens + handshakeTokens + req.CreditsToUse,
		UploadTokens:       models.StringList{},
		PhotosProcess:      models.StringList{},
		FavoritePhotos:     models.StringList{},
		ImagesStatus:       models.ImagesUploading,
		CollectionID:       collectionID,
		GiftID:             giftID,
		GiftFields:         models.StringList{},
		Watermark:          req.Watermark,
		WatermarkSize:      clampWatermarkSize(req.WatermarkSize),
		WatermarkPosition:  req.WatermarkPosition,
		IsPublic:           req.IsPublicEvent,
		LastUpdated:        now.Unix(),
		ExpiresAt:          now.AddDate(0, 0, models.EventsRetentionDays),
	}
	if giftDefaults != nil {
		// Donated branding wins per field; the caller's value stands
		// wherever the issuer left a field blank.
		if giftDefaults.Location != "" {
			event.Location = giftDefaults.Location
		}
		if giftDefaults.PhotographerName != "" {
			event.PhotographerName = giftDefaults.PhotographerName
		}
		if giftDefaults.Website != "" {
			event.Website = giftDefaults.Website
		}
		if giftDefaults.Instagram != "" {
			event.Instagram = giftDefaults.Instagram
		}
		if giftDefaults.Facebook != "" {
			event.Facebook = giftDefaults.Facebook
		}
		event.Logo = giftDefaults.Logo
		event.MainImage = giftDefaults.MainImage
		event.GiftFields = giftFields
	}

	if err := s.events.CreateWithMirror(event); err != nil {
		s.logger.Error("event write failed", zap.String("event", slug), zap.Error(err))
		return nil, NewError(502, "could not create event")
	}

	if req.Thtk != "" {
		if err := s.handshakes.MarkUsed(req.Thtk); err != nil {
			s.logger.Error("handshake consume failed", zap.String("thtk", req.Thtk), zap.Error(err))
		}
	}

	return event, nil
}

// GetEvent returns a single event owned by the caller's organization.
func (s *EventService) GetEvent(organizationID, eventID string) (*models.Event, error) {
	event, err := s.events.GetByID(organizationID, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(400, "event not found")
	}
	return event, err
}

// ListEvents returns the organization's events, settling counters for
// events that went quiet mid-upload. A DONE event with pending processed
// photos folds them into its total; an UPLOADING event that went stale is
// closed out as DONE or parked as SUSPENDED with its missing photo count.
func (s *EventService) ListEvents(organizationID string) ([]models.Event, error) {
	events, err := s.events.ListByOrganization(organizationID)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-staleAfter).Unix()
	for i := range events {
		event := &events[i]
		if event.LastUpdated > cutoff {
			continue
		}

		switch {
		case event.ImagesStatus == models.ImagesDone && len(event.PhotosProcess) > 0:
			if err := s.events.FoldProcessedPhotos(organizationID, event.ID, event.PhotosProcess); err != nil {
				s.logger.Error("photo fold failed", zap.String("event", event.ID), zap.Error(err))
				continue
			}
			event.TotalPhotos += len(event.PhotosProcess)
			event.PhotosProcess = models.StringList{}

		case event.ImagesStatus == models.ImagesUploading:
			processed := event.TotalPhotos + len(event.PhotosProcess)
			missing := len(event.UploadTokens) - processed
			if len(event.PhotosProcess) > 0 {
				if err := s.events.FoldProcessedPhotos(organizationID, event.ID, event.PhotosProcess); err != nil {
					s.logger.Error("photo fold failed", zap.String("event", event.ID), zap.Error(err))
					continue
				}
				event.TotalPhotos += len(event.PhotosProcess)
				event.PhotosProcess = models.StringList{}
			}
			if missing <= 0 {
				if err := s.events.SetImagesStatus(organizationID, event.ID, models.ImagesDone); err != nil {
					s.logger.Error("status update failed", zap.String("event", event.ID), zap.Error(err))
					continue
				}
				event.ImagesStatus = models.ImagesDone
				event.MissingPhotos = 0
			} else {
				if err := s.events.SetSuspended(organizationID, event.ID, missing); err != nil {
					s.logger.Error("status update failed", zap.String("event", event.ID), zap.Error(err))
					continue
				}
				event.ImagesStatus = models.ImagesSuspended
				event.MissingPhotos = missing
			}
		}
	}
	return events, nil
}

// giftLockedFields maps request fields to the names recorded in
// GiftFields when a gift donated them.
var giftLockedFields = map[string]string{
	"location":         "location",
	"photographerName": "photographerName",
	"website":          "website",
	"instagram":        "instagram",
	"facebook":         "facebook",
}

// UpdateEvent applies a partial update. Fields donated by a gift are
// locked and refuse edits.
func (s *EventService) UpdateEvent(organizationID, eventID string, req *models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.GetEvent(organizationID, eventID)
	if err != nil {
		return nil, err
	}

	locked := func(field string) bool {
		name := giftLockedFields[field]
		for _, f := range event.GiftFields {
			if f == name {
				return true
			}
		}
		return false
	}

	fields := map[string]interface{}{}
	if req.EventName != nil {
		fields["name"] = *req.EventName
	}
	if req.EventDate != nil {
		fields["event_date"] = *req.EventDate
	}
	if req.Location != nil {
		if locked("location") {
			return nil, NewError(400, "field is set by a gift and cannot be changed")
		}
		fields["location"] = *req.Location
	}
	if req.PhotographerName != nil {
		if locked("photographerName") {
			return nil, NewError(400, "field is set by a gift and cannot be changed")
		}
		fields["photographer_name"] = *req.PhotographerName
	}
	if req.Website != nil {
		if locked("website") {
			return nil, NewError(400, "field is set by a gift and cannot be changed")
		}
		fields["website"] = *req.Website
	}
	if req.Instagram != nil {
		if locked("instagram") {
			return nil, NewError(400, "field is set by a gift and cannot be changed")
		}
		fields["instagram"] = *req.Instagram
	}
	if req.Facebook != nil {
		if locked("facebook") {
			return nil, NewError(400, "field is set by a gift and cannot be changed")
		}
		fields["facebook"] = *req.Facebook
	}
	if req.IsPublicEvent != nil {
		fields["is_public"] = *req.IsPublicEvent
	}
	if len(fields) == 0 {
		return event, nil
	}
	fields["last_updated"] = time.Now().Unix()

	if err := s.events.UpdateFields(organizationID, eventID, fields); err != nil {
		return nil, err
	}
	return s.GetEvent(organizationID, eventID)
}

// DeleteEvent removes the event record and hands the rest of the teardown
// to the background worker.
func (s *EventService) DeleteEvent(ctx context.Context, organizationID, eventID string) error {
	event, err := s.GetEvent(organizationID, eventID)
	if err != nil {
		return err
	}

	if err := s.events.DeleteWithMirror(organizationID, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(400, "event not found")
		}
		return err
	}

	if err := s.jobs.Send(ctx, s.deleteQueueURL, queue.CascadeDeletePayload{
		Organization: organizationID,
		EventID:      eventID,
		Collection:   event.CollectionID,
	}); err != nil {
		s.logger.Error("cascade delete enqueue failed", zap.String("event", eventID), zap.Error(err))
	}
	return nil
}

// FinishUpload closes the upload window for an event.
func (s *EventService) FinishUpload(organizationID, eventID string) error {
	if err := s.events.UpdateFields(organizationID, eventID, map[string]interface{}{
		"images_status":  models.ImagesDone,
		"missing_photos": 0,
		"last_updated":   time.Now().Unix(),
	}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(400, "event not found")
		}
		return err
	}
	return nil
}

// AddImages raises the photo budget of an existing event, funded by a
// payment handshake, the credit balance, or both, and reopens uploads.
func (s *EventService) AddImages(organizationID string, req *models.AddImagesRequest) (*models.Event, error) {
	event, err := s.GetEvent(organizationID, req.ID)
	if err != nil {
		return nil, err
	}

	added := 0
	if req.Thtk != "" {
		handshake, err := s.handshakes.Get(req.Thtk)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(400, "payment not found")
		}
		if err != nil {
			return nil, err
		}
		if handshake.Status != models.HandshakeReady || handshake.OrganizationID != organizationID {
			return nil, NewError(400, "payment not confirmed")
		}
		added += handshake.Tokens
	}
	if req.CreditsToUse > 0 {
		if err := s.orgs.DebitTokens(organizationID, req.CreditsToUse); err != nil {
			if errors.Is(err, repository.ErrConditionFailed) {
				return nil, NewReasonError(403, "not enough credits", models.ReasonLimit)
			}
			return nil, err
		}
		added += req.CreditsToUse
	}
	if added == 0 {
		return nil, NewError(400, "nothing to add")
	}

	if err := s.events.UpdateFields(organizationID, req.ID, map[string]interface{}{
		"number_of_photos": event.NumberOfPhotos + added,
		"images_status":    models.ImagesUploading,
		"last_updated":     time.Now().Unix(),
	}); err != nil {
		return nil, err
	}

	if req.Thtk != "" {
		if err := s.handshakes.MarkUsed(req.Thtk); err != nil {
			s.logger.Error("handshake consume failed", zap.String("thtk", req.Thtk), zap.Error(err))
		}
	}
	return s.GetEvent(organizationID, req.ID)
}

// UpdateFavorites adds and removes favorite photos with set semantics.
func (s *EventService) UpdateFavorites(organizationID, eventID string, req *models.FavoritePhotosRequest) (*models.Event, error) {
	event, err := s.GetEvent(organizationID, eventID)
	if err != nil {
		return nil, err
	}

	favorites := map[string]bool{}
	for _, photo := range event.FavoritePhotos {
		favorites[photo] = true
	}
	for _, photo := range req.PhotosToAdd {
		favorites[photo] = true
	}
	for _, photo := range req.PhotosToRemove {
		delete(favorites, photo)
	}

	next := models.StringList{}
	for photo := range favorites {
		next = append(next, photo)
	}

	if err := s.events.UpdateFavorites(organizationID, eventID, next); err != nil {
		return nil, err
	}
	event.FavoritePhotos = next
	return event, nil
}

// EventQRCode renders a QR code pointing at the event's public gallery.
func (s *EventService) EventQRCode(organizationID, eventID string, size int) ([]byte, error) {
	if _, err := s.GetEvent(organizationID, eventID); err != nil {
		return nil, err
	}
	png, err := s.qr.GenerateQRCode(eventID, size)
	if err != nil {
		return nil, fmt.Errorf("qr generation: %w", err)
	}
	return png, nil
}
