package domain

// Summary is the admin dashboard aggregation. Sales figures are in cents.
// Empty collections produce zero counts and empty slices, never nulls.
type Summary struct {
	NumUsers          int             `json:"num_users"`
	NumOrders         int             `json:"num_orders"`
	TotalSales        int64           `json:"total_sales"`
	NumMessages       int             `json:"num_messages"`
	DailyOrders       []DailyOrders   `json:"daily_orders"`
	ProductCategories []CategoryCount `json:"product_categories"`
}

// DailyOrders is one point in the per-day sales series, grouped by order
// creation date (YYYY-MM-DD).
type DailyOrders struct {
	Date   string `json:"date"`
	Orders int    `json:"orders"`
	Sales  int64  `json:"sales"`
}

// CategoryCount is the number of catalog products in one category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
