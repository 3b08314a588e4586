package dto

// RegisterRequest is the registration payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the user
type LoginResponse struct {
	Token string     `json:"token"`
	User  UserOutput `json:"user"`
}
