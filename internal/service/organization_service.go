package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/flashframe/flashframe-backend/internal/models"
	"github.com/flashframe/flashframe-backend/internal/repository"
	"github.com/flashframe/flashframe-backend/pkg/storage"
)

type organizationStore interface {
	GetByID(id string) (*models.Organization, error)
	Update(org *models.Organization) error
}

type OrganizationService struct {
	orgs    organizationStore
	storage *storage.S3Storage
	logger  *zap.Logger
}

func NewOrganizationService(orgs organizationStore, storage *storage.S3Storage, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{orgs: orgs, storage: storage, logger: logger}
}

func (s *OrganizationService) Get(organizationID string) (*models.OrganizationResponse, error) {
	org, err := s.orgs.GetByID(organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(400, "organization not found")
	}
	if err != nil {
		return nil, err
	}
	return &models.OrganizationResponse{
		ID:               org.ID,
		Name:             org.Name,
		Tokens:           org.Tokens,
		Location:         org.Location,
		PhotographerName: org.PhotographerName,
		Website:          org.Website,
		Instagram:        org.Instagram,
		Facebook:         org.Facebook,
		Logo:             org.Logo,
		MainImage:        org.MainImage,
	}, nil
}

func (s *OrganizationService) Update(organizationID string, req *models.UpdateOrganizationRequest) (*models.OrganizationResponse, error) {
	org, err := s.orgs.GetByID(organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(400, "organization not found")
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		org.Name = *req.Name
	}
	if req.Location != nil {
		org.Location = *req.Location
	}
	if req.PhotographerName != nil {
		org.PhotographerName = *req.PhotographerName
	}
	if req.Website != nil {
		org.Website = *req.Website
	}
	if req.Instagram != nil {
		org.Instagram = *req.Instagram
	}
	if req.Facebook != nil {
		org.Facebook = *req.Facebook
	}

	if err := s.orgs.Update(org); err != nil {
		return nil, err
	}
	return s.Get(organizationID)
}

// UploadAsset stores an organization branding image (logo or mainImage)
// under the assets prefix. The background worker picks the upload up from
// the bucket notification and writes the sized rendition.
func (s *OrganizationService) UploadAsset(ctx context.Context, organizationID, kind string, data []byte) error {
	if kind != "logo" && kind != "mainImage" {
		return NewError(400, "unknown asset kind")
	}

	// Reject anything that does not decode as an image before it lands in
	// the bucket.
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		return NewError(400, "file is not a valid image")
	}

	org, err := s.orgs.GetByID(organizationID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(400, "organization not found")
	}
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s/%s/%s", storage.PrefixAssets, organizationID, kind)
	if err := s.storage.PutObject(ctx, key, bytes.NewReader(data)); err != nil {
		s.logger.Error("asset upload failed", zap.String("key", key), zap.Error(err))
		return NewError(502, "could not store asset")
	}

	if kind == "logo" {
		org.Logo = true
		org.LogoVersion++
	} else {
		org.MainImage = true
		org.MainImageVersion++
	}
	return s.orgs.Update(org)
}
