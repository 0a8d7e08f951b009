package auth

// SignInRequest is the credentials body of POST /auth/signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is the token envelope returned on a successful sign-in.
type SignInResponse struct {
	Token    string   `json:"token"`
	Type     string   `json:"type"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	ID       int64    `json:"id"`
}

// SignUpRequest is the registration body of POST /auth/signup.
type SignUpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Photo           string `json:"photo,omitempty"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Password and email bounds enforced by the backend.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 100
	MinEmailLength    = 5
	MaxEmailLength    = 50
)
