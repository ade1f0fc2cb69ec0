package model

import "time"

type Category struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description,omitempty"`
	Image         string      `json:"image,omitempty"`
	ParentID      string      `json:"parent,omitempty"`
	Featured      bool        `json:"featured"`
	ProductCount  int         `json:"productCount"`
	Subcategories []*Category `json:"subcategories,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
