package main

import (
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"product-inventory/internal/blob"
	"product-inventory/internal/config"
	"product-inventory/internal/handler"
	"product-inventory/internal/logger"
	"product-inventory/internal/storage"
)

// Stage prefix the deployed API Gateway stage uses; stripped here the same
// way the gateway strips it before invoking the lambda.
const stagePrefix = "/prod"

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

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(fiberlogger.New())
	app.Static("/", cfg.WebDir)
	app.All(stagePrefix+"/*", adapt(h))

	log.Info("local server listening", zap.String("addr", cfg.ListenAddr))
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal("listen", zap.Error(err))
	}
}

// adapt turns a plain HTTP request into the proxy event shape the lambda
// handler consumes, so the exact same handler code runs locally.
func adapt(h *handler.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := map[string]string{}
		c.Context().QueryArgs().VisitAll(func(k, v []byte) {
			query[string(k)] = string(v)
		})

		resp, err := h.Handle(c.Context(), events.APIGatewayProxyRequest{
			HTTPMethod:            c.Method(),
			Path:                  strings.TrimPrefix(c.Path(), stagePrefix),
			QueryStringParameters: query,
			Body:                  string(c.Body()),
		})
		if err != nil {
			return err
		}
		for k, v := range resp.Headers {
			c.Set(k, v)
		}
		return c.Status(resp.StatusCode).SendString(resp.Body)
	}
}
