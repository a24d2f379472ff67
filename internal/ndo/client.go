// Package ndo is the HTTP client for the orchestrator API: template
// fetch/patch, template lookup by name and the UUID-to-name reference
// resolver. All blocking I/O of the tool lives here; the patch engine in
// pkg/reconcile never calls into this package.
package ndo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imroc/req/v3"
	"github.com/wI2L/jsondiff"
)

const (
	templatesPath         = "/mso/api/v1/templates"
	templateSummariesPath = "/mso/api/v1/templates/summaries"
	templateObjectsPath   = "/mso/api/v1/templates/objects"
)

// Config carries the connection settings for one orchestrator.
type Config struct {
	// Host is the base URL, e.g. "https://nd.example.com".
	Host     string
	Username string
	Password string
	// Insecure skips TLS certificate verification (lab deployments).
	Insecure bool
	Timeout  time.Duration
}

// Client talks to one orchestrator instance. It is safe for concurrent use.
type Client struct {
	http *req.Client
}

// NewClient builds a Client from the given config.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, ErrNoHost
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := req.C().
		SetBaseURL(strings.TrimRight(cfg.Host, "/")).
		SetCommonBasicAuth(cfg.Username, cfg.Password).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetTimeout(cfg.Timeout).
		SetUserAgent("ndoctl").
		SetCommonErrorResult(&APIError{})

	if cfg.Insecure {
		httpClient.EnableInsecureSkipVerify()
	}

	return &Client{http: httpClient}, nil
}

// GetTemplate fetches the full template document by ID.
func (c *Client) GetTemplate(ctx context.Context, id string) (*Template, error) {
	var doc map[string]any
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&doc).
		Get(templatesPath + "/" + id)
	if err := handleAPIError(res, err, "get template"); err != nil {
		return nil, err
	}
	return &Template{ID: id, doc: doc}, nil
}

// TemplateSummaries lists all templates known to the orchestrator.
func (c *Client) TemplateSummaries(ctx context.Context) ([]TemplateSummary, error) {
	var summaries []TemplateSummary
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&summaries).
		Get(templateSummariesPath)
	if err := handleAPIError(res, err, "list template summaries"); err != nil {
		return nil, err
	}
	return summaries, nil
}

// FindTemplateID resolves a template display name to its ID via the summary
// listing. Name and type must both match; a missing template is
// [ErrTemplateNotFound].
func (c *Client) FindTemplateID(ctx context.Context, name, templateType string) (string, error) {
	summaries, err := c.TemplateSummaries(ctx)
	if err != nil {
		return "", err
	}
	for _, s := range summaries {
		if s.TemplateName == name && s.TemplateType == templateType {
			return s.TemplateID, nil
		}
	}
	return "", fmt.Errorf("%w: %q (%s)", ErrTemplateNotFound, name, templateType)
}

// PatchTemplate sends the ordered operation list as a partial update and
// returns the post-apply template document the orchestrator responds with.
// The apply is sequential on the remote side but not atomic; callers own
// retry semantics.
func (c *Client) PatchTemplate(ctx context.Context, id string, ops jsondiff.Patch) (*Template, error) {
	var doc map[string]any
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(ops).
		SetSuccessResult(&doc).
		Patch(templatesPath + "/" + id)
	if err := handleAPIError(res, err, "patch template"); err != nil {
		return nil, err
	}
	return &Template{ID: id, doc: doc}, nil
}

// ObjectName resolves a template object UUID to its display name. It returns
// the empty string when the UUID does not exist; only transport and API
// failures are errors.
func (c *Client) ObjectName(ctx context.Context, objectType, uuid string) (string, error) {
	var obj map[string]any
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"type": objectType,
			"uuid": uuid,
		}).
		SetSuccessResult(&obj).
		Get(templateObjectsPath)
	if res != nil && res.StatusCode == 404 {
		return "", nil
	}
	if err := handleAPIError(res, err, "resolve object name"); err != nil {
		return "", err
	}
	name, _ := obj["name"].(string)
	return name, nil
}
