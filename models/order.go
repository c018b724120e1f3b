package models

import "time"

// OrderStatus is the closed set of order states. Only "created" is written
// by the checkout transaction; fulfillment updates happen downstream.
type OrderStatus string

const (
	OrderCreated    OrderStatus = "created"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Order is created atomically with its items; an order without at least one
// item never exists. Total is always the server-computed value.
type Order struct {
	ID             string      `bson:"id" json:"id"`
	CustomerID     string      `bson:"customer_id" json:"customer_id"`
	ShopID         string      `bson:"shop_id" json:"shop_id"`
	Status         OrderStatus `bson:"status" json:"status"`
	Subtotal       float64     `bson:"subtotal" json:"subtotal"`
	Discount       float64     `bson:"discount" json:"discount"`
	PlatformFee    float64     `bson:"platform_fee" json:"platform_fee"`
	Total          float64     `bson:"total" json:"total"`
	DeliveryMethod string      `bson:"delivery_method" json:"delivery_method"`
	PaymentMethod  string      `bson:"payment_method" json:"payment_method"`
	CreatedAt      time.Time   `bson:"created_at" json:"created_at"`
}

type OrderItem struct {
	ID        string  `bson:"id" json:"id"`
	OrderID   string  `bson:"order_id" json:"order_id"`
	ProductID string  `bson:"product_id" json:"product_id"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unit_price" json:"unit_price"`
	Total     float64 `bson:"total" json:"total"`
}

// OrderStatusUpdate is the append-only order timeline, mirroring the role
// BookingHistoryEntry plays for bookings.
type OrderStatusUpdate struct {
	ID        string      `bson:"id" json:"id"`
	OrderID   string      `bson:"order_id" json:"order_id"`
	Status    OrderStatus `bson:"status" json:"status"`
	Note      string      `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}
