package handler

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"product-inventory/internal/domain"
)

const (
	healthPath   = "/health"
	productPath  = "/product"
	productsPath = "/products"
)

// ProductStore is the slice of the storage gateway the handler uses.
type ProductStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	ScanAll(ctx context.Context) ([]domain.Product, error)
	Put(ctx context.Context, p domain.Product) error
	UpdateField(ctx context.Context, productID, field string, value interface{}) (map[string]interface{}, error)
	Delete(ctx context.Context, productID string) (*domain.Product, error)
}

// UploadSigner mints presigned upload URLs and derives public object URLs.
type UploadSigner interface {
	UploadURL(key, contentType string) (string, error)
	PublicURL(key string) string
}

type Handler struct {
	store  ProductStore
	signer UploadSigner
	log    *zap.Logger
}

func New(store ProductStore, signer UploadSigner, log *zap.Logger) *Handler {
	return &Handler{store: store, signer: signer, log: log}
}

// Handle dispatches one API Gateway proxy event to exactly one of the six
// routes. Anything else is a 404.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	log := h.log.With(
		zap.String("invocation", uuid.NewString()),
		zap.String("method", req.HTTPMethod),
		zap.String("path", req.Path),
	)
	log.Info("handling request")

	switch {
	case req.HTTPMethod == "GET" && req.Path == healthPath:
		return buildResponse(200, nil), nil
	case req.HTTPMethod == "GET" && req.Path == productPath:
		return h.getProduct(ctx, log, req.QueryStringParameters["productId"]), nil
	case req.HTTPMethod == "GET" && req.Path == productsPath:
		return h.getProducts(ctx, log), nil
	case req.HTTPMethod == "POST" && req.Path == productPath:
		return h.saveProduct(ctx, log, req.Body), nil
	case req.HTTPMethod == "PATCH" && req.Path == productPath:
		return h.modifyProduct(ctx, log, req.Body), nil
	case req.HTTPMethod == "DELETE" && req.Path == productPath:
		return h.deleteProduct(ctx, log, req.Body), nil
	default:
		return errorResponse(404, "route not found"), nil
	}
}

func (h *Handler) getProduct(ctx context.Context, log *zap.Logger, productID string) events.APIGatewayProxyResponse {
	if productID == "" {
		return errorResponse(400, "productId is required")
	}
	p, err := h.store.Get(ctx, productID)
	if err != nil {
		return h.backendError(log, err)
	}
	return buildResponse(200, p)
}

type listBody struct {
	Products []domain.Product `json:"products"`
}

func (h *Handler) getProducts(ctx context.Context, log *zap.Logger) events.APIGatewayProxyResponse {
	products, err := h.store.ScanAll(ctx)
	if err != nil {
		return h.backendError(log, err)
	}
	return buildResponse(200, listBody{Products: products})
}

type saveRequest struct {
	ProductID   string  `json:"productId"`
	ImageType   string  `json:"imageType"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

type saveBody struct {
	Operation string         `json:"Operation"`
	Message   string         `json:"Message"`
	Item      domain.Product `json:"Item"`
	UploadURL string         `json:"uploadURL"`
}

func (h *Handler) saveProduct(ctx context.Context, log *zap.Logger, body string) events.APIGatewayProxyResponse {
	var req saveRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorResponse(400, "invalid request body")
	}
	if req.ProductID == "" {
		req.ProductID = domain.NewProductID()
	}
	if req.ImageType == "" {
		req.ImageType = domain.DefaultImageType
	}

	key := domain.ObjectKey(req.ProductID, req.ImageType)
	uploadURL, err := h.signer.UploadURL(key, domain.ContentTypeFor(req.ImageType))
	if err != nil {
		return h.backendError(log, err)
	}

	// The record is written whether or not the client ever performs the
	// upload; the image URL may dangle.
	item := domain.Product{
		ProductID:   req.ProductID,
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		Image:       h.signer.PublicURL(key),
	}
	if err := h.store.Put(ctx, item); err != nil {
		return h.backendError(log, err)
	}
	return buildResponse(200, saveBody{
		Operation: "SAVE",
		Message:   "SUCCESS",
		Item:      item,
		UploadURL: uploadURL,
	})
}

type modifyRequest struct {
	ProductID   string      `json:"productId"`
	UpdateKey   string      `json:"updateKey"`
	UpdateValue interface{} `json:"updateValue"`
}

type modifyBody struct {
	Operation         string                 `json:"Operation"`
	Message           string                 `json:"Message"`
	UpdatedAttributes map[string]interface{} `json:"UpdatedAttributes"`
}

func (h *Handler) modifyProduct(ctx context.Context, log *zap.Logger, body string) events.APIGatewayProxyResponse {
	var req modifyRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorResponse(400, "invalid request body")
	}
	if req.ProductID == "" {
		return errorResponse(400, "productId is required")
	}
	if !domain.IsMutableField(req.UpdateKey) {
		return errorResponse(400, "updateKey must be one of name, price, description")
	}
	updated, err := h.store.UpdateField(ctx, req.ProductID, req.UpdateKey, req.UpdateValue)
	if err != nil {
		return h.backendError(log, err)
	}
	return buildResponse(200, modifyBody{
		Operation:         "UPDATE",
		Message:           "SUCCESS",
		UpdatedAttributes: updated,
	})
}

type deleteRequest struct {
	ProductID string `json:"productId"`
}

type deleteBody struct {
	Operation string          `json:"Operation"`
	Message   string          `json:"Message"`
	Item      *domain.Product `json:"Item"`
}

func (h *Handler) deleteProduct(ctx context.Context, log *zap.Logger, body string) events.APIGatewayProxyResponse {
	var req deleteRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorResponse(400, "invalid request body")
	}
	if req.ProductID == "" {
		return errorResponse(400, "productId is required")
	}
	// Deleting an id that was never there is fine; Item is just null.
	prior, err := h.store.Delete(ctx, req.ProductID)
	if err != nil {
		return h.backendError(log, err)
	}
	return buildResponse(200, deleteBody{
		Operation: "DELETE",
		Message:   "SUCCESS",
		Item:      prior,
	})
}

func (h *Handler) backendError(log *zap.Logger, err error) events.APIGatewayProxyResponse {
	if errors.Is(err, domain.ErrProductNotFound) {
		return errorResponse(404, "product not found")
	}
	log.Error("backend call failed", zap.Error(err))
	return errorResponse(500, "backend failure")
}
