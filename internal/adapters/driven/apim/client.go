// Package apim talks to the Azure API Management control plane over
// the ARM REST API.
package apim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
	"github.com/custodia-labs/apidocs-cli/internal/core/ports/driven"
	"github.com/custodia-labs/apidocs-cli/internal/logger"
)

const (
	defaultBaseURL = "https://management.azure.com"
	armAPIVersion  = "2022-08-01"

	// ARM throttles management reads aggressively; stay well under
	// the documented subscription-level limits.
	requestsPerSecond = 5
	requestBurst      = 5
)

// Client lists and exports APIs from one API Management service.
type Client struct {
	httpClient     *http.Client
	tokens         driven.TokenProvider
	log            logger.Logger
	limiter        *rate.Limiter
	baseURL        string
	subscriptionID string
	resourceGroup  string
	serviceName    string
}

var _ driven.APIManagementClient = (*Client)(nil)

// Option customises a Client.
type Option func(*Client)

// WithBaseURL overrides the ARM endpoint, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New returns a Client scoped to one APIM service instance.
func New(tokens driven.TokenProvider, subscriptionID, resourceGroup, serviceName string, log logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{Timeout: 60 * time.Second},
		tokens:         tokens,
		log:            log,
		limiter:        rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		baseURL:        defaultBaseURL,
		subscriptionID: subscriptionID,
		resourceGroup:  resourceGroup,
		serviceName:    serviceName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type armAPI struct {
	Name       string `json:"name"`
	Properties struct {
		DisplayName string `json:"displayName"`
		Description string `json:"description"`
		ServiceURL  string `json:"serviceUrl"`
	} `json:"properties"`
}

type armAPIPage struct {
	Value    []armAPI `json:"value"`
	NextLink string   `json:"nextLink"`
}

// ListAPIs pages through every API on the service and applies the
// filter. Tags are fetched per API only when the filter asks for them.
func (c *Client) ListAPIs(ctx context.Context, filter domain.APIFilter) ([]domain.APIHandle, error) {
	c.log.Info("Retrieving APIs from service: %s", c.serviceName)

	var all []domain.APIHandle
	next := fmt.Sprintf("%s%s/apis?api-version=%s", c.baseURL, c.servicePath(), armAPIVersion)
	for next != "" {
		var page armAPIPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("listing apis: %w", err)
		}
		for _, api := range page.Value {
			all = append(all, domain.APIHandle{
				ID:          api.Name,
				DisplayName: api.Properties.DisplayName,
				Description: api.Properties.Description,
				ServiceURL:  api.Properties.ServiceURL,
			})
		}
		next = page.NextLink
	}
	c.log.Info("Found %d APIs", len(all))

	if len(filter.IncludeTags) > 0 {
		for i := range all {
			tags, err := c.apiTags(ctx, all[i].ID)
			if err != nil {
				return nil, err
			}
			all[i].Tags = tags
		}
	}
	if filter.IsEmpty() {
		return all, nil
	}
	var matched []domain.APIHandle
	for _, api := range all {
		if filter.Matches(api) {
			matched = append(matched, api)
		}
	}
	c.log.Info("%d APIs match the configured filter", len(matched))
	return matched, nil
}

type armTagPage struct {
	Value []struct {
		Properties struct {
			DisplayName string `json:"displayName"`
		} `json:"properties"`
	} `json:"value"`
	NextLink string `json:"nextLink"`
}

func (c *Client) apiTags(ctx context.Context, apiID string) ([]string, error) {
	var tags []string
	next := fmt.Sprintf("%s%s/apis/%s/tags?api-version=%s", c.baseURL, c.servicePath(), url.PathEscape(apiID), armAPIVersion)
	for next != "" {
		var page armTagPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("listing tags for api %s: %w", apiID, err)
		}
		for _, tag := range page.Value {
			tags = append(tags, tag.Properties.DisplayName)
		}
		next = page.NextLink
	}
	return tags, nil
}

type exportResult struct {
	Value struct {
		Link string `json:"link"`
	} `json:"value"`
	Properties struct {
		Value struct {
			Link string `json:"link"`
		} `json:"value"`
	} `json:"properties"`
}

// ExportAPI asks ARM for an OpenAPI export of the API and fetches the
// resulting blob. The export endpoint hands back a short-lived SAS
// link rather than the document itself.
func (c *Client) ExportAPI(ctx context.Context, api domain.APIHandle) ([]byte, error) {
	c.log.Info("Downloading OpenAPI specification for API: %s (ID: %s)", api.Name(), api.ID)

	exportURL := fmt.Sprintf("%s%s/apis/%s?export=true&format=openapi%%2Bjson-link&api-version=%s",
		c.baseURL, c.servicePath(), url.PathEscape(api.ID), armAPIVersion)
	var result exportResult
	if err := c.getJSON(ctx, exportURL, &result); err != nil {
		return nil, fmt.Errorf("exporting api %s: %w", api.ID, err)
	}

	link := result.Value.Link
	if link == "" {
		link = result.Properties.Value.Link
	}
	if link == "" {
		return nil, fmt.Errorf("export of api %s returned no download link", api.ID)
	}

	// The SAS link is pre-authorised; no bearer token here.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching exported spec for api %s: %w", api.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching exported spec for api %s: unexpected status %d", api.ID, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) servicePath() string {
	return fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.ApiManagement/service/%s",
		c.subscriptionID, c.resourceGroup, c.serviceName)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	token, err := c.tokens.GetToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrAuthRequired)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
