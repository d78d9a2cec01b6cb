package domain

import "time"

type Phone struct {
	ID          ProductID `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Brand       string    `json:"brand" yaml:"brand"`
	Price       int64     `json:"price" yaml:"price"`
	Condition   string    `json:"condition" yaml:"condition"`
	Description string    `json:"description" yaml:"description"`
	Images      []string  `json:"images" yaml:"images"`
	Storage     string    `json:"storage" yaml:"storage"`
	Battery     string    `json:"battery,omitempty" yaml:"battery,omitempty"`
	Available   bool      `json:"available" yaml:"available"`
	IsDeal      bool      `json:"is_deal" yaml:"is_deal"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

func (p Phone) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Price:     p.Price,
		Images:    p.Images,
		Condition: p.Condition,
		Storage:   p.Storage,
		Battery:   p.Battery,
	}
}
