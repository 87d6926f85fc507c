package domain

import (
	"math/rand"
	"strconv"
)

// Product is the single record type stored in the inventory table, keyed
// by ProductID. Image is derived from the product id and image type at save
// time; it may point at an object the client never finished uploading.
type Product struct {
	ProductID   string  `json:"productId"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

// DefaultImageType is used when a save request does not name one.
const DefaultImageType = "jpg"

// NewProductID generates an id for save requests that omit one. Ids are
// random integers in [0, 1000) rendered as strings; collisions overwrite
// the existing record.
func NewProductID() string {
	return strconv.Itoa(rand.Intn(1000))
}

// ObjectKey is the bucket key for a product's image.
func ObjectKey(productID, imageType string) string {
	return productID + "." + imageType
}

// ContentTypeFor maps an image type to the content type the upload URL is
// scoped to. Anything that isn't png is treated as jpeg.
func ContentTypeFor(imageType string) string {
	if imageType == "png" {
		return "image/png"
	}
	return "image/jpeg"
}

var mutableFields = map[string]bool{
	"name":        true,
	"price":       true,
	"description": true,
}

// IsMutableField reports whether update requests may touch the field.
// The product id is the table key and the image URL is derived, so
// neither is updatable in place.
func IsMutableField(field string) bool {
	return mutableFields[field]
}
