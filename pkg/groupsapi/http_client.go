package groupsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	groups "github.com/goliatone/go-customer-groups/components/groups"
)

const defaultPath = "/customer-groups"

// HTTPConfig configures the HTTP record source.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Path       string
	HTTPClient *http.Client
}

// HTTPClient reads customer groups from a remote admin API. It implements
// groups.RecordSource.
type HTTPClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ groups.RecordSource = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the remote customer group endpoint.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("groupsapi: base url is required")
	}
	path := cfg.Path
	if path == "" {
		path = defaultPath
	}
	endpoint, err := url.JoinPath(cfg.BaseURL, path)
	if err != nil {
		return nil, fmt.Errorf("groupsapi: build endpoint: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPClient{endpoint: endpoint, apiKey: cfg.APIKey, client: httpClient}, nil
}

// FetchAll returns every group in the order the remote API lists them.
func (c *HTTPClient) FetchAll(ctx context.Context) ([]groups.GroupRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("groupsapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("groupsapi: http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return nil, fmt.Errorf("groupsapi: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("groupsapi: decode response: %w", err)
	}
	return payload.toRecords(), nil
}

// groupDTO mirrors the admin API's camelCase payload.
type groupDTO struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	CustomerCount int      `json:"customerCount"`
	Discount      int      `json:"discount"`
	Benefits      []string `json:"benefits"`
	Color         string   `json:"color"`
	ParentID      *int     `json:"parentId"`
}

type listResponse struct {
	Data []groupDTO `json:"data"`
}

func (r listResponse) toRecords() []groups.GroupRecord {
	records := make([]groups.GroupRecord, len(r.Data))
	for i, dto := range r.Data {
		records[i] = groups.GroupRecord{
			ID:              dto.ID,
			Name:            dto.Name,
			Description:     dto.Description,
			CustomerCount:   dto.CustomerCount,
			DiscountPercent: dto.Discount,
			Benefits:        append([]string(nil), dto.Benefits...),
			ColorTag:        groups.ColorTag(dto.Color),
			ParentID:        dto.ParentID,
		}
	}
	return records
}
