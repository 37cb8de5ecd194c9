package recognition

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"go.uber.org/zap"
)

// MaxFacesPerPhoto caps how many faces are indexed from a single image.
const MaxFacesPerPhoto = 25

// collectionRetries is how many suffixed names are tried when the
// requested collection name is taken.
const collectionRetries = 3

// Face is one indexed face.
type Face struct {
	FaceID string
}

type Client struct {
	client *rekognition.Client
	logger *zap.Logger
}

func NewClient(ctx context.Context, region string, logger *zap.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Client{
		client: rekognition.NewFromConfig(awsCfg),
		logger: logger,
	}, nil
}

// CreateCollection provisions a face collection named after the event
// slug. When the name is taken it retries with an increasing numeric
// suffix up to three times, then gives up. Returns the name that stuck.
func (c *Client) CreateCollection(ctx context.Context, collectionID string) (string, error) {
	name := collectionID
	for attempt := 0; ; attempt++ {
		_, err := c.client.CreateCollection(ctx, &rekognition.CreateCollectionInput{
			CollectionId: aws.String(name),
		})
		if err == nil {
			return name, nil
		}
		var exists *types.ResourceAlreadyExistsException
		if !errors.As(err, &exists) || attempt >= collectionRetries {
			return "", fmt.Errorf("create collection %q: %w", name, err)
		}
		c.logger.Info("collection name taken, retrying with suffix",
			zap.String("collection", name))
		name = name + strconv.Itoa(attempt)
	}
}

// DeleteCollection removes an event's face collection.
func (c *Client) DeleteCollection(ctx context.Context, collectionID string) error {
	_, err := c.client.DeleteCollection(ctx, &rekognition.DeleteCollectionInput{
		CollectionId: aws.String(collectionID),
	})
	if err != nil {
		return fmt.Errorf("delete collection %q: %w", collectionID, err)
	}
	return nil
}

// IndexFaces detects and indexes faces from an object already in the
// photo bucket.
func (c *Client) IndexFaces(ctx context.Context, collectionID, bucket, key string) ([]Face, error) {
	out, err := c.client.IndexFaces(ctx, &rekognition.IndexFacesInput{
		CollectionId: aws.String(collectionID),
		MaxFaces:     aws.Int32(MaxFacesPerPhoto),
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return nil, err
	}

	faces := make([]Face, 0, len(out.FaceRecords))
	for _, record := range out.FaceRecords {
		if record.Face == nil || record.Face.FaceId == nil {
			continue
		}
		faces = append(faces, Face{FaceID: *record.Face.FaceId})
	}
	return faces, nil
}

// IsInvalidImage reports whether the error means the object is not a
// usable image. Such objects are deleted rather than retried.
func IsInvalidImage(err error) bool {
	var invalid *types.InvalidImageFormatException
	return errors.As(err, &invalid)
}
