package model

// Category forms the two-level category → subcategory → product tree used by
// the POS navigation.
type Category struct {
	BaseModel
	ParentID  *int64  `db:"parent_id" json:"parent_id"` // nil for root categories
	Name      string  `db:"name" json:"name"`
	ImageURL  *string `db:"image_url" json:"image_url,omitempty"`
	SortOrder int     `db:"sort_order" json:"sort_order"`
	IsActive  bool    `db:"is_active" json:"is_active"`
}
