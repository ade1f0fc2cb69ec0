package review

import (
	"strings"

	"github.com/example/ec-storefront/internal/model"
)

// Input is the body of a review create or update.
type Input struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Title   string `json:"title" validate:"max=100"`
	Comment string `json:"comment" validate:"min=10,max=500"`
}

func (in Input) trimmed() Input {
	in.Title = strings.TrimSpace(in.Title)
	in.Comment = strings.TrimSpace(in.Comment)
	return in
}

// ListQuery pages through one product's approved reviews.
type ListQuery struct {
	Page      int
	Limit     int
	SortBy    string
	Ascending bool
	Rating    int
}

// AdminQuery pages through every review.
type AdminQuery struct {
	Status model.ReviewStatus
	Rating int
	Page   int
	Limit  int
}

const defaultLimit = 10

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

func sortColumn(sortBy string) string {
	switch sortBy {
	case "rating", "helpful":
		return sortBy
	}
	return "createdAt"
}
