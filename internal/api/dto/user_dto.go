package dto

import "github.com/spec-kit/user-directory/internal/domain"

// UserRequest payload for create and update.
// Presence of required fields is checked by the directory, not here.
type UserRequest struct {
	ID        string `json:"id" validate:"omitempty,uuid"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Gender    string `json:"gender" validate:"max=16"`
	Age       *int   `json:"age" validate:"omitempty,gte=0,lte=150"`
	Email     string `json:"email" validate:"omitempty,email,max=254"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	Email     string `json:"email"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Gender:    string(user.Gender),
		Age:       user.Age,
		Email:     user.Email,
	}
}

// NewUserResponses maps a slice of domain users, never returning nil.
func NewUserResponses(users []domain.User) []UserResponse {
	items := make([]UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, NewUserResponse(user))
	}
	return items
}
