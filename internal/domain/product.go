package domain

import "time"

// Product represents a catalog item. Price is in cents. Rating and NumReviews
// are derived from the review set and recomputed whenever a review is added.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Category      string    `json:"category"`
	Image         string    `json:"image"`
	Images        []string  `json:"images"`
	Origin        string    `json:"origin"`
	Finish        string    `json:"finish"`
	Description   string    `json:"description"`
	Price         int64     `json:"price"`
	CountInStock  int       `json:"count_in_stock"`
	Rating        float64   `json:"rating"`
	NumReviews    int       `json:"num_reviews"`
	FeaturedScore int       `json:"featured_score"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InStock reports whether the requested quantity can be fulfilled.
func (p *Product) InStock(quantity int) bool {
	return quantity > 0 && p.CountInStock >= quantity
}
