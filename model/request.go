package model

// SignupRequest defines the payload for creating a new account.
// Validation tags guard data integrity at the entry point.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"omitempty,len=10,numeric"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreatePostRequest defines the payload for publishing a post.
type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
	Collab  bool   `json:"collab"`
	OwnerID int    `json:"owner_id" validate:"required"`
}

// UpdatePostRequest replaces all editable fields of a post.
type UpdatePostRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
	Collab  bool   `json:"collab"`
}

// UpdateUserInfoRequest replaces the whole profile extension in one update.
// Absent optional fields are stored as NULL, not skipped.
type UpdateUserInfoRequest struct {
	Fullname   *string  `json:"fullname" validate:"omitempty,max=100"`
	About      *string  `json:"about"`
	Github     *string  `json:"github" validate:"omitempty,url"`
	Portfolio  *string  `json:"portfolio" validate:"omitempty,url"`
	ImageURL   *string  `json:"image_url" validate:"omitempty,url"`
	Location   *string  `json:"location" validate:"omitempty,max=100"`
	Linkedin   *string  `json:"linkedin" validate:"omitempty,url"`
	Skills     []string `json:"skills"`
	TechStack  []string `json:"tech_stack"`
	OpenToWork bool     `json:"open_to_work"`
}
