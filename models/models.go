package models

// Post is the sqlite row behind model.Post.
type Post struct {
	ID      uint `gorm:"primary_key"`
	Title   string
	Content string
	Author  string
}

// Rate is the sqlite row behind model.Rate; ID keeps the seed order.
type Rate struct {
	ID       uint   `gorm:"primary_key"`
	Currency string `gorm:"index"`
	Rate     float64
}
