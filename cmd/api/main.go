package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"go.uber.org/zap"

	"product-inventory/internal/blob"
	"product-inventory/internal/config"
	"product-inventory/internal/handler"
	"product-inventory/internal/logger"
	"product-inventory/internal/storage"
)

func main() {
	log := logger.New()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", zap.Error(err))
	}

	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
	}))

	h := handler.New(
		storage.New(dynamodb.New(sess), cfg.TableName, log),
		blob.NewSigner(s3.New(sess), cfg.Bucket, cfg.UploadTTL),
		log,
	)
	lambda.Start(h.Handle)
}
