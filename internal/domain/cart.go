package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ProductID identifies a catalog entry. Stored carts may carry it either as
// a JSON string or a JSON number; both decode to the same value.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

func (id ProductID) String() string {
	return string(id)
}

// CartLineItem is one product in the cart. Everything except Quantity and
// AddedAt is a snapshot copied when the product was first added.
type CartLineItem struct {
	ID        ProductID `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Brand     string    `json:"brand" bson:"brand"`
	Price     int64     `json:"price" bson:"price"`
	Images    []string  `json:"images" bson:"images"`
	Condition string    `json:"condition" bson:"condition"`
	Storage   string    `json:"storage" bson:"storage"`
	Battery   string    `json:"battery,omitempty" bson:"battery,omitempty"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	AddedAt   time.Time `json:"addedAt" bson:"added_at"`
}

// Subtotal is price times quantity.
func (i CartLineItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// ProductSnapshot is the minimal set of product fields the cart copies.
type ProductSnapshot struct {
	ID        ProductID
	Name      string
	Brand     string
	Price     int64
	Images    []string
	Condition string
	Storage   string
	Battery   string
}

// Snapshotter is anything that can be put into a cart.
type Snapshotter interface {
	Snapshot() ProductSnapshot
}

// Snapshot lets a bare ProductSnapshot be added directly.
func (p ProductSnapshot) Snapshot() ProductSnapshot {
	return p
}

// NewLineItem builds a line item with quantity 1 from a snapshot.
func NewLineItem(p ProductSnapshot, addedAt time.Time) CartLineItem {
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	return CartLineItem{
		ID:        p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Price:     p.Price,
		Images:    images,
		Condition: p.Condition,
		Storage:   p.Storage,
		Battery:   p.Battery,
		Quantity:  1,
		AddedAt:   addedAt,
	}
}
