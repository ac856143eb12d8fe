package models

import "time"

// Post represents a bulletin-board post. Posts are never modified after they
// are stored.
type Post struct {
	ID        int64     `json:"id" validate:"gte=0"`
	Title     string    `json:"title" validate:"required,notblank,max=200"`
	Content   string    `json:"content" validate:"required,notblank,max=5000"`
	Author    string    `json:"author" validate:"required,notblank,max=50"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListRequest carries the parameters of a post list query.
type ListRequest struct {
	Strategy string `json:"strategy"`
	Page     int    `json:"page" validate:"gte=0"`
	Size     int    `json:"size" validate:"gte=1,lte=100"`
	// LastID is the cursor for cursor based retrieval; nil on the first call.
	LastID *int64 `json:"lastId"`
}

// PageResponse is the list payload shared by all retrieval strategies.
// Fields that a strategy does not produce are left nil and omitted.
type PageResponse struct {
	Content       []*Post `json:"content"`
	Page          *int    `json:"page,omitempty"`
	Size          int     `json:"size"`
	TotalElements *int64  `json:"totalElements,omitempty"`
	TotalPages    *int    `json:"totalPages,omitempty"`
	First         *bool   `json:"first,omitempty"`
	Last          *bool   `json:"last,omitempty"`
	HasNext       bool    `json:"hasNext"`
	NextCursor    *int64  `json:"nextCursor,omitempty"`
}
