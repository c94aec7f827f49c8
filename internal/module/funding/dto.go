package funding

// OfferInput is the body of POST /projects/:id/funding-requests.
type OfferInput struct {
	Amount int64  `json:"amount" binding:"required"`
	Note   string `json:"note" binding:"max=1000"`
}
