package httpx

// CreateOrderRequest is the POST /orders body.
type CreateOrderRequest struct {
	CustomerID      string               `json:"customerId"`
	PaymentMethodID string               `json:"paymentMethodId"`
	Items           []CreateOrderItemDTO `json:"items"`
}

type CreateOrderItemDTO struct {
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// CancelOrderRequest is the optional POST /orders/{orderId}/cancel body.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// ErrorResponse carries the uniform error message for a rejected request.
// No field-level detail is exposed.
type ErrorResponse struct {
	Error string `json:"error"`
}
