package recruit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const contentType = "application/json"

// apiMessage is the envelope the platform uses for both structured errors
// ({"error": ...}) and acknowledgement messages ({"message": ...}).
type apiMessage struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Item is a generic API document decoded further with mapstructure.
type Item map[string]any

func (c *Client) getJSON(ctx context.Context, op, url string, q url.Values, target any) error {
	body, _, err := c.send(ctx, op, http.MethodGet, url, q, nil, "")
	if err != nil {
		return err
	}

	return c.decode(op, body, target)
}

func (c *Client) postJSON(ctx context.Context, op, url string, payload, target any) error {
	_, err := c.roundTripJSON(ctx, op, http.MethodPost, url, payload, target)
	return err
}

func (c *Client) putJSON(ctx context.Context, op, url string, payload, target any) error {
	_, err := c.roundTripJSON(ctx, op, http.MethodPut, url, payload, target)
	return err
}

func (c *Client) deleteJSON(ctx context.Context, op, url string, target any) error {
	body, _, err := c.send(ctx, op, http.MethodDelete, url, nil, nil, "")
	if err != nil {
		return err
	}

	return c.decode(op, body, target)
}

func (c *Client) roundTripJSON(ctx context.Context, op, method, url string, payload, target any) (*http.Response, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal payload: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	body, resp, err := c.send(ctx, op, method, url, nil, reader, contentType)
	if err != nil {
		return resp, err
	}

	return resp, c.decode(op, body, target)
}

// postFormFile uploads a single file as multipart form data.
func (c *Client) postFormFile(ctx context.Context, op, url, field, filename string, file io.Reader, target any) error {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("%s: create form file: %w", op, err)
	}
	if _, err = io.Copy(part, file); err != nil {
		return fmt.Errorf("%s: copy file: %w", op, err)
	}
	w.Close()

	body, _, err := c.send(ctx, op, http.MethodPost, url, nil, &b, w.FormDataContentType())
	if err != nil {
		return err
	}

	return c.decode(op, body, target)
}

// getItems fetches a JSON array of generic documents for mapstructure decoding.
func (c *Client) getItems(ctx context.Context, op, url string, q url.Values) ([]Item, error) {
	var items []Item
	if err := c.getJSON(ctx, op, url, q, &items); err != nil {
		return nil, err
	}

	return items, nil
}

// send performs the request and applies the single response-inspection policy:
// transport failures are KindNetwork, a 401 fires the unauthorized hook and
// returns KindAuthorization, any other non-2xx becomes KindServer carrying the
// server's structured message.
func (c *Client) send(ctx context.Context, op, method, reqURL string, q url.Values, body io.Reader, reqContentType string) ([]byte, *http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	c.setHeaders(req)
	if reqContentType != "" {
		req.Header.Set("Content-Type", reqContentType)
	}
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("platform request", zap.String("op", op), zap.String("method", method), zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp, &Error{Kind: KindNetwork, Op: op, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.logger.Debug("unauthorized response", zap.String("op", op))
		c.notifyUnauthorized()
		return nil, resp, &Error{Kind: KindAuthorization, Op: op, Status: resp.StatusCode, Message: serverMessage(data)}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, resp, &Error{
			Kind:    KindServer,
			Op:      op,
			Status:  resp.StatusCode,
			Message: serverMessage(data),
			Err:     fmt.Errorf("bad status: %s", resp.Status),
		}
	}

	return data, resp, nil
}

func (c *Client) decode(op string, body []byte, target any) error {
	if target == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}

	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
		// The platform also accepts the session cookie it issues on login.
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
}

func serverMessage(body []byte) string {
	var msg apiMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return ""
	}

	if m := strings.TrimSpace(msg.Error); m != "" {
		return m
	}

	return strings.TrimSpace(msg.Message)
}
