// Package googletasks implements service.Store using the Google Tasks API.
// The account is implied by the OAuth token, so user IDs are not sent.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todoboard/internal/config"
	"todoboard/internal/service"
)

const (
	// PageSize is the number of items per API page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Client implements service.Store using Google Tasks API.
type Client struct {
	svc *tasks.Service
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	oauthConfig, err := loadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read token.json (run: todoboard login)", service.ErrUnauthorized)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token.json: %v", service.ErrUnauthorized, err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)

	// Create HTTP client with token source
	httpClient := oauth2.NewClient(ctx, tokenSource)

	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func loadOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: oauth_client.json not found in %s", service.ErrUnauthorized, cfg.Dir)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %v", service.ErrUnauthorized, err)
	}
	return oauthConfig, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context, userID string) ([]service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []service.TaskList
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, service.TaskList{ID: list.Id, Name: list.Title})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// InsertList creates a new task list and returns its ID.
func (c *Client) InsertList(ctx context.Context, userID, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	list, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(ctx).Do()
	if err != nil {
		return "", wrapError(err)
	}
	return list.Id, nil
}

// ListTasks returns the open tasks of a list in the list's display order.
func (c *Client) ListTasks(ctx context.Context, userID, listID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	items, err := c.listItems(ctx, listID)
	if err != nil {
		return nil, err
	}
	result := make([]service.Task, 0, len(items))
	for _, item := range items {
		result = append(result, fromAPI(item))
	}
	return result, nil
}

// listItems fetches every open task of a list, sorted by the API position.
func (c *Client) listItems(ctx context.Context, listID string) ([]*tasks.Task, error) {
	var items []*tasks.Task
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Pages(ctx, func(resp *tasks.Tasks) error {
			items = append(items, resp.Items...)
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	// Positions are zero-padded strings, so lexical order is display order.
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

// InsertTask creates a task at the end of a list and returns its ID.
func (c *Client) InsertTask(ctx context.Context, userID, listID string, f service.TaskFields) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// New API tasks go to the top unless a predecessor is given.
	items, err := c.listItems(ctx, listID)
	if err != nil {
		return "", err
	}
	call := c.svc.Tasks.Insert(listID, toAPI(f)).Context(ctx)
	if n := len(items); n > 0 {
		call = call.Previous(items[n-1].Id)
	}
	task, err := call.Do()
	if err != nil {
		return "", wrapError(err)
	}
	return task.Id, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, userID, listID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	err := c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// UpdateTask applies a partial update. The notes trailer is rewritten
// from the current task, so the task is fetched first.
func (c *Client) UpdateTask(ctx context.Context, userID, listID, taskID string, p service.TaskPatch) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	current, err := c.svc.Tasks.Get(listID, taskID).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	updated := p.Apply(fromAPI(current))

	patch := toAPI(updated.Fields())
	// Empty strings are dropped from the request unless forced.
	patch.ForceSendFields = []string{"Title", "Notes"}
	if updated.DueDate == "" {
		patch.NullFields = []string{"Due"}
	}
	if _, err := c.svc.Tasks.Patch(listID, taskID, patch).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: todoboard login)", service.ErrUnauthorized)
		case http.StatusNotFound:
			return service.ErrNotFound
		}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: token expired or revoked (run: todoboard login)", service.ErrUnauthorized)
	}

	return err
}
