package model

import "time"

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

type Review struct {
	ID            string       `json:"id"`
	ProductID     string       `json:"product"`
	UserID        string       `json:"userId"`
	User          *UserSummary `json:"user,omitempty"`
	Rating        int          `json:"rating"`
	Title         string       `json:"title,omitempty"`
	Comment       string       `json:"comment"`
	Status        ReviewStatus `json:"status"`
	Helpful       int          `json:"helpful"`
	AdminResponse string       `json:"adminResponse,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// ReviewQuery selects a page of reviews. Empty fields do not filter.
type ReviewQuery struct {
	ProductID string
	Status    ReviewStatus
	Rating    int
	SortBy    string
	Ascending bool
	Page      int
	Limit     int
}

func (q ReviewQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// RatingStats summarises approved reviews.
type RatingStats struct {
	Count   int
	Average float64
}

type ReviewOverview struct {
	Total              int         `json:"totalReviews"`
	Pending            int         `json:"pendingReviews"`
	Approved           int         `json:"approvedReviews"`
	Rejected           int         `json:"rejectedReviews"`
	AverageRating      float64     `json:"averageRating"`
	RatingDistribution map[int]int `json:"ratingDistribution"`
}
