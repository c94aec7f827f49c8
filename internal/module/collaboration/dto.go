package collaboration

// CreateRequestInput is the body of POST /projects/:id/collaboration-requests.
type CreateRequestInput struct {
	Message string `json:"message" binding:"max=1000"`
}
