package instagram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"

	"igunfollow/pkg/auth"
	"igunfollow/pkg/errors"
	"igunfollow/pkg/graph"
	"igunfollow/pkg/logger"
)

// ClientOptions configures the API client. Zero values fall back to the
// public web client's settings.
type ClientOptions struct {
	BaseURL   string
	Timeout   time.Duration
	AppID     string
	UserAgent string
}

// Client talks to Instagram's web API on behalf of one browser session
type Client struct {
	http    *resty.Client
	jar     http.CookieJar
	baseURL *url.URL
	session *auth.Session
	logger  logger.Logger
}

// NewClient creates a client whose cookie jar is seeded with the session
// cookies. Every request then carries them like a logged-in browser tab.
func NewClient(session *auth.Session, opts ClientOptions, log logger.Logger) (*Client, error) {
	if session == nil {
		return nil, errors.New(errors.ErrorTypeAuth, 0, "no session")
	}
	if log == nil {
		log = logger.GetLogger()
	}

	if opts.BaseURL == "" {
		opts.BaseURL = BaseURL
	}
	if opts.AppID == "" {
		opts.AppID = AppID
	}
	if opts.UserAgent == "" {
		opts.UserAgent = session.UserAgent
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", opts.BaseURL, err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	jar.SetCookies(baseURL, session.Cookies())

	c := &Client{
		jar:     jar,
		baseURL: baseURL,
		session: session,
		logger:  log,
	}

	c.http = resty.New().
		SetBaseURL(opts.BaseURL).
		SetCookieJar(jar).
		SetTimeout(opts.Timeout).
		SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname())).
		SetHeaders(map[string]string{
			"User-Agent":       opts.UserAgent,
			"X-IG-App-ID":      opts.AppID,
			"X-Requested-With": "XMLHttpRequest",
			"Accept":           "*/*",
			"Accept-Language":  "en-US,en;q=0.9",
			"Referer":          baseURL.String() + "/",
		})

	c.http.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Method == resty.MethodPost {
			req.SetHeader("X-CSRFToken", c.session.Token(c.jar, c.baseURL))
		}
		c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
		})
		return nil
	})
	c.http.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
			"method":   resp.Request.Method,
			"url":      resp.Request.URL,
			"status":   resp.StatusCode(),
			"duration": resp.Time(),
		})
		return nil
	})

	return c, nil
}

// Close releases idle connections held by the transport
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}

// Session returns the credentials the client acts with
func (c *Client) Session() *auth.Session {
	return c.session
}

// getJSON sends a GET request and decodes a 2xx body into target
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target interface{}) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method": http.MethodGet,
			"path":   path,
			"error":  err.Error(),
		})
		return errors.Wrap(errors.ErrorTypeNetwork, 0, err, "request failed")
	}

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body(), target); err != nil {
		bodyPreview := resp.String()
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"path":         path,
			"status":       resp.StatusCode(),
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return errors.Wrap(errors.ErrorTypeParsing, resp.StatusCode(), err, "failed to parse JSON")
	}

	return nil
}

// checkResponseStatus maps a non-success status to a typed error
func (c *Client) checkResponseStatus(resp *resty.Response) error {
	apiErr := errors.FromStatus(resp.StatusCode())
	if apiErr == nil {
		return nil
	}

	fields := map[string]interface{}{
		"status": resp.StatusCode(),
		"url":    resp.Request.URL,
	}
	if apiErr.Type == errors.ErrorTypeServerError || apiErr.Type == errors.ErrorTypeUnknown {
		c.logger.ErrorWithFields(apiErr.Message, fields)
	} else {
		c.logger.WarnWithFields(apiErr.Message, fields)
	}
	return apiErr
}

// ResolveUser looks up the numeric account ID behind a username
func (c *Client) ResolveUser(ctx context.Context, username string) (*UserInfo, error) {
	c.logger.DebugWithFields("resolving user", map[string]interface{}{
		"username": username,
	})

	var response ProfileResponse
	if err := c.getJSON(ctx, ProfileEndpoint, url.Values{"username": {username}}, &response); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", username, err)
	}

	if response.RequiresToLogin {
		c.logger.WarnWithFields("authentication required for profile", map[string]interface{}{
			"username": username,
		})
		return nil, errors.New(errors.ErrorTypeAuth, http.StatusUnauthorized, "Instagram requires authentication to view this profile")
	}

	if response.Data.User == nil || response.Data.User.ID == "" {
		return nil, errors.New(errors.ErrorTypeParsing, http.StatusOK, "profile response for %s has no user id", username)
	}

	user := response.Data.User
	info := &UserInfo{ID: user.ID.String(), Username: user.Username, FullName: user.FullName}
	if info.Username == "" {
		info.Username = username
	}

	c.logger.DebugWithFields("resolved user", map[string]interface{}{
		"username": info.Username,
		"user_id":  info.ID,
	})
	return info, nil
}

// FetchFollowers returns one page of the accounts following userID
func (c *Client) FetchFollowers(ctx context.Context, userID, cursor string, count int) (*graph.Page, error) {
	return c.fetchFriendships(ctx, graph.Followers, userID, cursor, count)
}

// FetchFollowing returns one page of the accounts userID follows
func (c *Client) FetchFollowing(ctx context.Context, userID, cursor string, count int) (*graph.Page, error) {
	return c.fetchFriendships(ctx, graph.Following, userID, cursor, count)
}

// FollowersSource adapts FetchFollowers to graph.FetchAll
func (c *Client) FollowersSource(userID string, count int) graph.PageSource {
	return func(ctx context.Context, cursor string) (*graph.Page, error) {
		return c.FetchFollowers(ctx, userID, cursor, count)
	}
}

// FollowingSource adapts FetchFollowing to graph.FetchAll
func (c *Client) FollowingSource(userID string, count int) graph.PageSource {
	return func(ctx context.Context, cursor string) (*graph.Page, error) {
		return c.FetchFollowing(ctx, userID, cursor, count)
	}
}

func (c *Client) fetchFriendships(ctx context.Context, relation graph.Relation, userID, cursor string, count int) (*graph.Page, error) {
	query := url.Values{"count": {strconv.Itoa(clampPageSize(count))}}
	if cursor != "" {
		query.Set("max_id", cursor)
	}

	c.logger.DebugWithFields("fetching connections page", map[string]interface{}{
		"relation": string(relation),
		"user_id":  userID,
		"cursor":   cursor,
	})

	var response FriendshipsResponse
	if err := c.getJSON(ctx, FriendshipsPath(userID, relation), query, &response); err != nil {
		return nil, err
	}

	page := &graph.Page{
		Accounts:   make([]graph.Account, 0, len(response.Users)),
		NextCursor: response.NextMaxID.String(),
	}
	for i, u := range response.Users {
		id := u.ID()
		if id == "" {
			return nil, errors.New(errors.ErrorTypeParsing, http.StatusOK, "%s entry %d (%s) has no id", relation, i, u.Username)
		}
		page.Accounts = append(page.Accounts, graph.Account{ID: id, Handle: u.Username, FullName: u.FullName})
	}
	return page, nil
}

// Unfollow stops following userID. Any HTTP response yields a result and a
// nil error, so the caller judges success by status code. Only a failure to
// get a response at all is returned as an error.
func (c *Client) Unfollow(ctx context.Context, userID string) (*FriendshipResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{"user_id": userID}).
		Post(DestroyPath(userID))
	if err != nil {
		c.logger.ErrorWithFields("unfollow request failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, errors.Wrap(errors.ErrorTypeNetwork, 0, err, "unfollow request failed")
	}

	result := &FriendshipResult{StatusCode: resp.StatusCode()}
	var body destroyResponse
	if json.Unmarshal(resp.Body(), &body) == nil {
		result.Status = body.Status
		result.Following = body.FriendshipStatus.Following
	}

	if !result.OK() {
		c.logger.WarnWithFields("unfollow rejected", map[string]interface{}{
			"user_id": userID,
			"status":  result.StatusCode,
		})
	}
	return result, nil
}
