package transport

import (
	"github.com/Skotchmaster/storefront/internal/models"
)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RequestResetRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	ResetToken      string `json:"resetToken"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type UpdatePermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

type CreateOrderRequest struct {
	Token string `json:"token"`
}

type ImageUploadRequest struct {
	Filename string `json:"filename"`
}

type CountResponse struct {
	Count int64 `json:"count"`
}

// UserResponse is the public shape of a user; the password hash and reset
// token never leave the server.
type UserResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Permissions []string          `json:"permissions"`
	Cart        []models.CartItem `json:"cart,omitempty"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		Permissions: u.Permissions.Strings(),
		Cart:        u.Cart,
	}
}

func NewUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
