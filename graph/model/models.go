package model

// Post is a stored post as returned by queries and the postAdded stream.
type Post struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// PostInput carries the fields of createPost; the store assigns the id.
type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

// Rate is one entry of the currency rate table.
type Rate struct {
	Currency string  `json:"currency"`
	Rate     float64 `json:"rate"`
}
