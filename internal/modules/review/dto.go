package review

type CreateReviewRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment,omitempty"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
	maxCommentLength = 2000
)
