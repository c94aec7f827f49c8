package project

// CreateInput is the body of POST /projects.
type CreateInput struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	FundingGoal int64  `json:"funding_goal"`
}

// Detail is the GET /projects/:id response.
type Detail struct {
	*Project
	Stats *Stats `json:"stats"`
}
