// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")

// ErrInsufficientStock reports that a conditional stock decrement did not apply:
// the product is out of stock or holds fewer units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")
