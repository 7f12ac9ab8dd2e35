package recruit

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIURL = "http://localhost:5000"
	userAgent     = "hireflow/cli"
)

// Client is the typed HTTP client for the recruitment platform API. All
// components talk to the platform through it, so the 401 policy lives here
// and nowhere else.
type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string

	mu             sync.Mutex
	token          string
	onUnauthorized func()
}

func New(logger *zap.Logger, apiURL, token string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		logger: logger,
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
	}
}

// OnUnauthorized registers the hook fired on every 401-equivalent response.
// The session manager installs itself here so that a session expiring under
// any component invalidates identity for all of them.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// SetToken replaces the session credential attached to subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) notifyUnauthorized() {
	c.mu.Lock()
	fn := c.onUnauthorized
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
}
