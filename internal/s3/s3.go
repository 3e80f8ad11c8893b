package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"github.com/kervinch/storefront-api/internal/data"
)

const (
	REGION           = "ap-southeast-1"
	PRODUCT          = "products/"
	PRODUCT_CATEGORY = "product-categories/"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Descriptor describes an object that has been stored and is publicly
// reachable at URL.
type Descriptor struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimetype"`
}

type S3 struct {
	bucketName string
	publicURL  string
	client     s3iface.S3API
}

// New opens an AWS session for region. publicURL is the base the object keys
// are appended to; it defaults to the bucket's virtual-hosted endpoint.
func New(bucketName, region, publicURL string) (*S3, error) {
	if region == "" {
		region = REGION
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region)},
	)
	if err != nil {
		return nil, err
	}

	return NewWithClient(s3.New(sess), bucketName, region, publicURL), nil
}

func NewWithClient(client s3iface.S3API, bucketName, region, publicURL string) *S3 {
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", bucketName, region)
	}
	if !strings.HasSuffix(publicURL, "/") {
		publicURL += "/"
	}

	return &S3{
		bucketName: bucketName,
		publicURL:  publicURL,
		client:     client,
	}
}

// Upload stores an image under folder with a generated name. Only jpeg, png,
// webp and gif content is accepted.
func (s *S3) Upload(ctx context.Context, file io.ReadSeeker, folder, contentType string, size int64) (Descriptor, error) {
	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))

	ext, ok := extensions[contentType]
	if !ok {
		return Descriptor{}, data.ErrImageFormat
	}

	key := folder + uuid.NewString() + ext

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Body:        file,
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ACL:         aws.String("public-read"),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Descriptor{}, err
	}

	return Descriptor{
		URL:      s.publicURL + key,
		Key:      key,
		Size:     size,
		MimeType: contentType,
	}, nil
}

// Delete removes the object stored under key.
func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return err
}
