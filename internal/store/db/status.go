package db

// ProductStatus is the availability of a product as stored in products.status.
type ProductStatus string

const (
	StatusInStock    ProductStatus = "InStock"
	StatusOutOfStock ProductStatus = "OutOfStock"
)

// StatusForStock derives the status a product must have for the given stock quantity.
func StatusForStock(quantity int32) ProductStatus {
	if quantity == 0 {
		return StatusOutOfStock
	}
	return StatusInStock
}
