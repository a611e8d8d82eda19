// Package api is the client for the backend REST surface.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deemkeen/postbox/domain"
	"github.com/deemkeen/postbox/util"
	"github.com/sirupsen/logrus"
)

const defaultHttpConnectTimeout = 5 * time.Second
const defaultHttpTlsTimeout = 5 * time.Second

// DeleteSuccess is the body the backend answers a successful delete with.
const DeleteSuccess = "Success"

type Client struct {
	baseUrl string
	http    *http.Client
	log     *logrus.Entry
}

func NewClient(baseUrl string, timeout time.Duration) *Client {
	dialer := &net.Dialer{
		Timeout: defaultHttpConnectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultHttpTlsTimeout,
	}
	return &Client{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		log: util.NewLogger("api"),
	}
}

func (c *Client) BaseUrl() string {
	return c.baseUrl
}

type tokenArgs struct {
	Token string `json:"token"`
}

type loginArgs struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type searchArgs struct {
	SearchTerm string `json:"searchTerm"`
}

// CheckToken asks the backend whether token is still valid.
func (c *Client) CheckToken(ctx context.Context, token string) (bool, error) {
	var valid bool
	empty, err := c.do(ctx, http.MethodPost, "/checkToken", tokenArgs{Token: token}, &valid)
	if err != nil {
		return false, err
	}
	return valid && !empty, nil
}

// GetPost returns nil without error when the backend answers with no post.
func (c *Client) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	post := &domain.Post{}
	empty, err := c.do(ctx, http.MethodGet, "/post/"+url.PathEscape(id), nil, post)
	if err == ErrNotFound || (err == nil && (empty || post.IsEmpty())) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (c *Client) EditPost(ctx context.Context, id string, edit domain.SavePost) (*domain.Post, error) {
	post := &domain.Post{}
	if _, err := c.do(ctx, http.MethodPost, "/post/"+url.PathEscape(id)+"/edit", edit, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost returns the raw answer; only DeleteSuccess means it worked.
func (c *Client) DeletePost(ctx context.Context, id string, token string) (string, error) {
	var answer string
	if _, err := c.do(ctx, http.MethodDelete, "/post/"+url.PathEscape(id), tokenArgs{Token: token}, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

func (c *Client) CreatePost(ctx context.Context, post domain.SavePost) (string, error) {
	var id string
	if _, err := c.do(ctx, http.MethodPost, "/create-post", post, &id); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) Profile(ctx context.Context, username string, token string) (domain.ProfileSummary, error) {
	var summary domain.ProfileSummary
	empty, err := c.do(ctx, http.MethodPost, "/profile/"+url.PathEscape(username), tokenArgs{Token: token}, &summary)
	if err == nil && empty {
		err = ErrNotFound
	}
	return summary, err
}

func (c *Client) ProfilePosts(ctx context.Context, username string) ([]domain.Post, error) {
	posts := []domain.Post{}
	_, err := c.do(ctx, http.MethodGet, "/profile/"+url.PathEscape(username)+"/posts", nil, &posts)
	return posts, err
}

func (c *Client) Followers(ctx context.Context, username string) ([]domain.User, error) {
	users := []domain.User{}
	_, err := c.do(ctx, http.MethodGet, "/profile/"+url.PathEscape(username)+"/followers", nil, &users)
	return users, err
}

func (c *Client) Following(ctx context.Context, username string) ([]domain.User, error) {
	users := []domain.User{}
	_, err := c.do(ctx, http.MethodGet, "/profile/"+url.PathEscape(username)+"/following", nil, &users)
	return users, err
}

// Login returns nil without error when the credentials were rejected.
func (c *Client) Login(ctx context.Context, username string, password string) (*domain.User, error) {
	var raw json.RawMessage
	empty, err := c.do(ctx, http.MethodPost, "/login", loginArgs{Username: username, Password: password}, &raw)
	if err != nil {
		return nil, err
	}
	if empty || isFalse(raw) {
		return nil, nil
	}
	user := &domain.User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil, fmt.Errorf("decode login result: %w", err)
	}
	if user.Token == "" {
		return nil, nil
	}
	return user, nil
}

func (c *Client) HomeFeed(ctx context.Context, token string) ([]domain.Post, error) {
	posts := []domain.Post{}
	_, err := c.do(ctx, http.MethodPost, "/getHomeFeed", tokenArgs{Token: token}, &posts)
	return posts, err
}

func (c *Client) Search(ctx context.Context, term string) ([]domain.Post, error) {
	posts := []domain.Post{}
	_, err := c.do(ctx, http.MethodPost, "/search", searchArgs{SearchTerm: term}, &posts)
	return posts, err
}

// do sends args as JSON and decodes the answer into result. empty reports a
// 2xx answer with no content. A bare false also counts as empty unless
// result is a bool or a raw message.
func (c *Client) do(ctx context.Context, method string, path string, args any, result any) (empty bool, err error) {
	var body io.Reader
	if args != nil {
		requestBodyBytes, err := json.Marshal(args)
		if err != nil {
			return false, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(requestBodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, body)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	if args != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	r, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer r.Body.Close()

	responseBodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return false, err
	}

	c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  r.StatusCode,
		"elapsed": time.Since(started).String(),
	}).Debug("backend call")

	switch {
	case r.StatusCode == http.StatusNotFound:
		return false, ErrNotFound
	case r.StatusCode == http.StatusUnauthorized || r.StatusCode == http.StatusForbidden:
		return false, ErrForbidden
	case r.StatusCode < 200 || r.StatusCode >= 300:
		return false, &StatusError{
			StatusCode: r.StatusCode,
			Message:    strings.TrimSpace(string(responseBodyBytes)),
		}
	}

	trimmed := bytes.TrimSpace(responseBodyBytes)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return true, nil
	}

	if s, ok := result.(*string); ok && trimmed[0] != '"' {
		// plain text answers such as a bare post id
		*s = string(trimmed)
		return false, nil
	}

	if isFalse(trimmed) {
		if _, ok := result.(*bool); !ok {
			if _, raw := result.(*json.RawMessage); !raw {
				return true, nil
			}
		}
	}

	if err := json.Unmarshal(trimmed, result); err != nil {
		return false, fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return false, nil
}

func isFalse(b []byte) bool {
	return string(bytes.TrimSpace(b)) == "false"
}
