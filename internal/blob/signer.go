package blob

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Signer mints time-limited upload URLs against the image bucket. The
// actual bytes flow straight from the browser to S3; the API only ever
// hands out the URL.
type Signer struct {
	s3     s3iface.S3API
	bucket string
	ttl    time.Duration
}

func NewSigner(api s3iface.S3API, bucket string, ttl time.Duration) *Signer {
	return &Signer{s3: api, bucket: bucket, ttl: ttl}
}

// UploadURL returns a presigned PUT scoped to the given key and content
// type, valid for the configured TTL.
func (s *Signer) UploadURL(key, contentType string) (string, error) {
	req, _ := s.s3.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	url, err := req.Presign(s.ttl)
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return url, nil
}

// PublicURL is the plain read URL recorded on the product. Nothing
// verifies the object behind it was ever uploaded.
func (s *Signer) PublicURL(key string) string {
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
