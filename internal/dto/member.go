package dto

// CreateMemberRequest registers a new gym member.
type CreateMemberRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
}
