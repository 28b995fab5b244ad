package mdm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mdmdirector/devicesweep/types"
	"github.com/mdmdirector/devicesweep/utils"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	DefaultGraphURL = "https://graph.microsoft.com"
	DefaultLoginURL = "https://login.microsoftonline.com"
	GraphAPIVersion = "v1.0"
	GraphScope      = "https://graph.microsoft.com/.default"

	defaultPageSize = 999
)

// ErrMissingCredentials - neither a token nor an app registration was supplied
var ErrMissingCredentials = errors.New("an access token or tenant id, client id and client secret are required")

// Client is the device and directory service the sweep runs against
type Client interface {
	ListManagedDevices(ctx context.Context, properties []string) ([]*types.ManagedDevice, error)
	DeleteManagedDevice(ctx context.Context, id string) error
	RetireManagedDevice(ctx context.Context, id string) error
	WipeManagedDevice(ctx context.Context, id string, opts types.WipeOptions) error

	ListGroups(ctx context.Context, properties []string) ([]*types.Group, error)
	ListGroupMembers(ctx context.Context, groupID string) ([]types.DirectoryObject, error)
	DeleteGroup(ctx context.Context, groupID string) error
	RenameGroup(ctx context.Context, groupID, newName string) error

	// FindDirectoryDevice returns ErrNotFound when no device object has deviceID
	FindDirectoryDevice(ctx context.Context, deviceID string) (*types.DirectoryDevice, error)
	DeleteDirectoryDevice(ctx context.Context, objectID string) error
}

// Config holds what is needed to reach Graph for one tenant
type Config struct {
	GraphURL     string
	LoginURL     string
	TenantID     string
	ClientID     string
	ClientSecret string
	// AccessToken skips the client credentials flow when set
	AccessToken string
	Timeout     time.Duration
	Retry       *utils.RetryConfig
	PageSize    int
}

// GraphClient talks to Microsoft Graph over the retrying HTTP client
type GraphClient struct {
	graphURL string
	pageSize int
	tokens   oauth2.TokenSource
	client   *utils.HTTPClient
}

var _ Client = (*GraphClient)(nil)

// NewGraphClient builds the token source and transport. No request is made.
func NewGraphClient(ctx context.Context, cfg Config) (*GraphClient, error) {
	tokens, err := tokenSource(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "NewGraphClient")
	}

	graphURL := strings.TrimRight(utils.FirstNonEmpty(cfg.GraphURL, DefaultGraphURL), "/")
	if _, err := url.Parse(graphURL); err != nil {
		return nil, errors.Wrap(err, "NewGraphClient: parse graph URL")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	transport := &oauth2.Transport{Source: tokens, Base: http.DefaultTransport}

	return &GraphClient{
		graphURL: graphURL,
		pageSize: pageSize,
		tokens:   tokens,
		client:   utils.NewHTTPClient(timeout, cfg.Retry, transport),
	}, nil
}

func tokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, error) {
	if cfg.AccessToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}), nil
	}
	if cfg.TenantID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}
	loginURL := strings.TrimRight(utils.FirstNonEmpty(cfg.LoginURL, DefaultLoginURL), "/")
	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", loginURL, url.PathEscape(cfg.TenantID)),
		Scopes:       []string{GraphScope},
	}
	return oauth2.ReuseTokenSource(nil, cc.TokenSource(ctx)), nil
}

// Connect acquires a token so that authentication problems surface before
// anything is fetched or changed
func (c *GraphClient) Connect() error {
	if _, err := c.tokens.Token(); err != nil {
		return errors.Wrap(err, "Connect: acquire token")
	}
	return nil
}

// buildURL constructs /v1.0/{segments...} with optional query params
func (c *GraphClient) buildURL(query url.Values, segments ...string) (string, error) {
	u, err := url.Parse(c.graphURL)
	if err != nil {
		return "", errors.Wrap(err, "parse graph URL")
	}

	parts := append([]string{u.Path, GraphAPIVersion}, segments...)
	u.Path = path.Join(parts...)

	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// do sends one request to an absolute URL and decodes a JSON body into out
func (c *GraphClient) do(ctx context.Context, method, endpoint string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if resp == nil {
		return errors.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return errors.Wrap(readErr, "read response body")
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return newServiceError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return errors.Wrapf(err, "decode response: %s", string(respBody))
	}
	return nil
}

func selectQuery(properties []string, top int) url.Values {
	q := url.Values{}
	if len(properties) > 0 {
		q.Set("$select", strings.Join(properties, ","))
	}
	if top > 0 {
		q.Set("$top", fmt.Sprintf("%d", top))
	}
	return q
}
