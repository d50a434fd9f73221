package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/kapturehq/kapture/internal/common"
	"github.com/kapturehq/kapture/internal/logging"
	"github.com/kapturehq/kapture/internal/models"
)

// Client is the REST implementation of RemoteAPI. Transient failures
// (429, 5xx, transport errors) are retried a couple of times with
// exponential backoff before the call is reported as failed; the sync
// engine's attempt budget counts such a call as a single logical attempt.
type Client struct {
	baseURL string
	version string
	httpc   *http.Client
	auth    Authenticator
	log     logging.Logger

	// newBackoff is a seam so tests can shrink the delays.
	newBackoff func() retry.Backoff
}

func NewClient(baseURL, version string, auth Authenticator, log logging.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		version: version,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		auth:    auth,
		log:     log,
		newBackoff: func() retry.Backoff {
			return retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
		},
	}
}

type createPageRequest struct {
	Parent     pageParent        `json:"parent"`
	Properties models.Properties `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

type pageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateRecord creates a page in the destination database and returns the
// remote page id.
func (c *Client) CreateRecord(ctx context.Context, destinationID string, props models.Properties) (string, error) {
	body := createPageRequest{
		Parent:     pageParent{DatabaseID: destinationID},
		Properties: props,
	}

	var page pageResponse
	if err := c.do(ctx, http.MethodPost, "/pages", body, &page); err != nil {
		return "", err
	}

	c.log.Debug(ctx, "created remote record", "destination", destinationID, "remote_id", page.ID)
	return page.ID, nil
}

type searchRequest struct {
	Filter searchFilter `json:"filter"`
}

type searchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

type databaseResponse struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title []struct {
		PlainText string `json:"plain_text"`
	} `json:"title"`
}

func (d databaseResponse) destination() models.Destination {
	dest := models.Destination{ID: d.ID, URL: d.URL}
	if len(d.Title) > 0 {
		dest.Title = d.Title[0].PlainText
	}
	return dest
}

type searchResponse struct {
	Results []databaseResponse `json:"results"`
}

// SearchDatabases lists all databases the integration can reach.
func (c *Client) SearchDatabases(ctx context.Context) ([]models.Destination, error) {
	body := searchRequest{Filter: searchFilter{Property: "object", Value: "database"}}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/search", body, &resp); err != nil {
		return nil, err
	}

	result := make([]models.Destination, 0, len(resp.Results))
	for _, d := range resp.Results {
		result = append(result, d.destination())
	}
	return result, nil
}

// FetchDatabase fetches a single database by id.
func (c *Client) FetchDatabase(ctx context.Context, id string) (*models.Destination, error) {
	var resp databaseResponse
	if err := c.do(ctx, http.MethodGet, "/databases/"+id, nil, &resp); err != nil {
		return nil, err
	}

	dest := resp.destination()
	return &dest, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	token, err := c.auth.Token(ctx)
	if err != nil {
		return err
	}

	var respBody []byte
	err = retry.Do(ctx, c.newBackoff(), func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Notion-Version", c.version)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return retry.RetryableError(err)
		}

		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: remote rejected token", common.ErrNotAuthenticated)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &RemoteError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
			if apiErr.Transient() {
				c.log.Warn(ctx, "transient api failure, will retry", "status", resp.StatusCode, "path", path)
				return retry.RetryableError(apiErr)
			}
			return apiErr
		}

		respBody = data
		return nil
	})
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
