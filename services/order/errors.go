package order

import "fmt"

// Error codes surfaced to callers of the checkout transaction.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeCrossShopOrder    = "CROSS_SHOP_ORDER"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeTotalMismatch     = "TOTAL_MISMATCH"
	CodeInvalidArgument   = "INVALID_ARGUMENT"
)

// CheckoutError is an expected checkout outcome the client must react to;
// none of these are retryable without changing the cart.
type CheckoutError struct {
	Code    string
	Message string
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewNotFoundError(msg string) error {
	return &CheckoutError{Code: CodeNotFound, Message: msg}
}

func NewCrossShopError(msg string) error {
	return &CheckoutError{Code: CodeCrossShopOrder, Message: msg}
}

func NewInsufficientStockError(msg string) error {
	return &CheckoutError{Code: CodeInsufficientStock, Message: msg}
}

func NewTotalMismatchError(msg string) error {
	return &CheckoutError{Code: CodeTotalMismatch, Message: msg}
}

func NewInvalidArgumentError(msg string) error {
	return &CheckoutError{Code: CodeInvalidArgument, Message: msg}
}
