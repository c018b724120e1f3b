package models

import "time"

// Shop is the read model the checkout needs: ownership for the order-created
// notification and the stock-exempt flag.
type Shop struct {
	ID      string `bson:"id" json:"id"`
	OwnerID string `bson:"owner_id" json:"owner_id"`
	Name    string `bson:"name" json:"name"`
	// OpenOrderMode shops (catalog/open-order listings) take orders without
	// tracking stock; checkout skips the decrement for them.
	OpenOrderMode bool      `bson:"open_order_mode" json:"open_order_mode"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// Product carries the shared mutable stock counter. Stock is decremented
// exclusively through the checkout transaction's conditional write and is
// never negative after a committed transaction.
type Product struct {
	ID        string    `bson:"id" json:"id"`
	ShopID    string    `bson:"shop_id" json:"shop_id"`
	Name      string    `bson:"name" json:"name"`
	Price     float64   `bson:"price" json:"price"`
	Stock     int       `bson:"stock" json:"stock"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
