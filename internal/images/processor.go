package images

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// ThumbnailPrefix is where rendered thumbnails land in the bucket. Objects
// under it never get re-processed.
const ThumbnailPrefix = "thumbnails/"

// Processor turns uploaded product images into thumbnails. It runs as its
// own lambda, triggered by object-created events on the image bucket.
type Processor struct {
	s3   s3iface.S3API
	edge int
	log  *zap.Logger
}

func NewProcessor(api s3iface.S3API, edge int, log *zap.Logger) *Processor {
	return &Processor{s3: api, edge: edge, log: log}
}

// HandleEvent processes each uploaded object in the event. A failure on
// one record does not stop the others; the lambda only reports an error
// when every record failed to process.
func (p *Processor) HandleEvent(ctx context.Context, event events.S3Event) error {
	var lastErr error
	for _, rec := range event.Records {
		// Event keys arrive URL-encoded.
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			key = rec.S3.Object.Key
		}
		if strings.HasPrefix(key, ThumbnailPrefix) {
			continue
		}
		if err := p.process(ctx, rec.S3.Bucket.Name, key); err != nil {
			p.log.Error("thumbnail failed",
				zap.String("bucket", rec.S3.Bucket.Name),
				zap.String("key", key),
				zap.Error(err))
			lastErr = err
			continue
		}
		p.log.Info("thumbnail written",
			zap.String("bucket", rec.S3.Bucket.Name),
			zap.String("key", ThumbnailPrefix+key))
	}
	return lastErr
}

func (p *Processor) process(ctx context.Context, bucket, key string) error {
	format, err := imaging.FormatFromExtension(path.Ext(key))
	if err != nil {
		return fmt.Errorf("unsupported image type %q: %w", path.Ext(key), err)
	}

	obj, err := p.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get object: %w", err)
	}
	defer obj.Body.Close()

	thumb, err := Render(obj.Body, p.edge, format)
	if err != nil {
		return err
	}

	contentType := "image/jpeg"
	if format == imaging.PNG {
		contentType = "image/png"
	}
	_, err = p.s3.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(ThumbnailPrefix + key),
		Body:        bytes.NewReader(thumb),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put thumbnail: %w", err)
	}
	return nil
}
