package recruit

import (
	"context"
	"fmt"
)

type Role string

const (
	RoleRecruiter Role = "recruiter"
	RoleCandidate Role = "candidate"
	RoleAdmin     Role = "admin"
)

// Identity is the authenticated user as reported by the platform. It is
// owned by the session manager and replaced wholesale, never patched.
type Identity struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type meResponse struct {
	Data *Identity `json:"data"`
}

type authResponse struct {
	User  *Identity `json:"user"`
	Token string    `json:"token"`
}

// Me asks the platform who is currently authenticated.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var resp meResponse
	if err := c.getJSON(ctx, "me", fmt.Sprintf("%s/api/auth/me", c.APIURL), nil, &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return nil, &Error{Kind: KindServer, Op: "me", Message: "empty identity in response"}
	}

	return resp.Data, nil
}

// Login exchanges credentials for an identity and a session token. The token
// is returned so the caller can persist it; it is also set on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*Identity, string, error) {
	payload := map[string]string{"email": email, "password": password}

	var auth authResponse
	resp, err := c.roundTripJSON(ctx, "login", "POST", fmt.Sprintf("%s/api/auth/login", c.APIURL), payload, &auth)
	if err != nil {
		return nil, "", err
	}

	if auth.User == nil {
		return nil, "", &Error{Kind: KindServer, Op: "login", Message: "empty identity in response"}
	}

	token := auth.Token
	if token == "" && resp != nil {
		for _, cookie := range resp.Cookies() {
			if cookie.Name == "token" {
				token = cookie.Value
			}
		}
	}

	c.SetToken(token)

	return auth.User, token, nil
}

// Signup registers a new identity. The server decides whether the identity
// becomes authenticated; contract is otherwise identical to Login.
func (c *Client) Signup(ctx context.Context, name, email, password string, role Role) (*Identity, string, error) {
	payload := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     string(role),
	}

	var auth authResponse
	resp, err := c.roundTripJSON(ctx, "signup", "POST", fmt.Sprintf("%s/api/auth/signup", c.APIURL), payload, &auth)
	if err != nil {
		return nil, "", err
	}

	if auth.User == nil {
		return nil, "", &Error{Kind: KindServer, Op: "signup", Message: "empty identity in response"}
	}

	token := auth.Token
	if token == "" && resp != nil {
		for _, cookie := range resp.Cookies() {
			if cookie.Name == "token" {
				token = cookie.Value
			}
		}
	}

	c.SetToken(token)

	return auth.User, token, nil
}

// Logout notifies the server. Callers clear local identity regardless of the
// outcome here.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "logout", fmt.Sprintf("%s/api/auth/logout", c.APIURL), nil, nil)
}
