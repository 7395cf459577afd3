package backend

import (
	"context"
	"net/http"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

func (c Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var out LoginResult
	if err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var out User
	if err := c.doJSON(ctx, "register", http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, "logout", http.MethodPost, "/auth/logout", nil, nil)
}

func (c Client) ForgetPassword(ctx context.Context, email string) error {
	return c.doJSON(ctx, "forget-password", http.MethodPost, "/auth/forget-password", map[string]string{"email": email}, nil)
}

func (c Client) UserDetails(ctx context.Context) (*User, error) {
	var out User
	if err := c.doJSON(ctx, "user-details", http.MethodGet, "/auth/user-details", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
