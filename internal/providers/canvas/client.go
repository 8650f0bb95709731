package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"canvas-sync/internal/domain"
	"canvas-sync/internal/httpx"
	"canvas-sync/internal/logging"
)

const (
	acceptJSON     = "application/json"
	defaultPerPage = 100
)

// Client is a typed wrapper over the Canvas REST API (https://canvas.instructure.com/doc/api/).
// It holds no business logic and never retries on its own; Retry is handed to the transport.
type Client struct {
	BaseURL string // https://{domain}/api/v1
	Token   string
	HTTP    *http.Client
	Retry   httpx.RetryConfig
	PerPage int
	Log     logging.Logger
}

func New(domain, token string, log logging.Logger) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		BaseURL: BaseURL(domain),
		Token:   token,
		HTTP: &http.Client{
			Transport: tr,
			Timeout:   2 * time.Minute, // per request
		},
		Retry:   httpx.DefaultRetryConfig(),
		PerPage: defaultPerPage,
		Log:     log,
	}
}

// BaseURL builds the API root for a Canvas host. A scheme in domain is kept as-is.
func BaseURL(domain string) string {
	d := strings.TrimRight(strings.TrimSpace(domain), "/")
	if !strings.Contains(d, "://") {
		d = "https://" + d
	}
	return d + "/api/v1"
}

/* -------- API -------- */

// ListCourses returns the favorite courses, or every enrolled course when onlyFavorites is false.
func (c *Client) ListCourses(ctx context.Context, onlyFavorites bool) ([]domain.Course, error) {
	endpoint := "courses"
	if onlyFavorites {
		endpoint = "users/self/favorites/courses"
	}

	var raw []courseJSON
	if err := c.get(ctx, endpoint, &raw); err != nil {
		return nil, err
	}

	out := make([]domain.Course, 0, len(raw))
	for _, rc := range raw {
		out = append(out, domain.Course{
			ID:   rc.ID,
			Code: firstNonEmpty(rc.CourseCode, rc.Name, strconv.FormatInt(rc.ID, 10)),
			Name: rc.Name,
		})
	}
	return out, nil
}

func (c *Client) ListFolders(ctx context.Context, courseID int64) ([]domain.Folder, error) {
	var raw []folderJSON
	if err := c.get(ctx, fmt.Sprintf("courses/%d/folders", courseID), &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Folder, 0, len(raw))
	for _, f := range raw {
		out = append(out, toFolder(f))
	}
	return out, nil
}

func (c *Client) GetFolder(ctx context.Context, courseID, folderID int64) (domain.Folder, error) {
	var raw folderJSON
	if err := c.get(ctx, fmt.Sprintf("courses/%d/folders/%d", courseID, folderID), &raw); err != nil {
		return domain.Folder{}, err
	}
	return toFolder(raw), nil
}

func (c *Client) ListModules(ctx context.Context, courseID int64) ([]domain.Module, error) {
	var raw []moduleJSON
	if err := c.get(ctx, fmt.Sprintf("courses/%d/modules", courseID), &raw); err != nil {
		return nil, err
	}
	out := make([]domain.Module, 0, len(raw))
	for _, m := range raw {
		out = append(out, domain.Module{ID: m.ID, Name: m.Name, ItemsCount: m.ItemsCount})
	}
	return out, nil
}

func (c *Client) ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]domain.ModuleItem, error) {
	var raw []moduleItemJSON
	if err := c.get(ctx, fmt.Sprintf("courses/%d/modules/%d/items", courseID, moduleID), &raw); err != nil {
		return nil, err
	}
	out := make([]domain.ModuleItem, 0, len(raw))
	for _, it := range raw {
		out = append(out, domain.ModuleItem{
			ID:          it.ID,
			Kind:        itemKind(it.Type),
			Title:       it.Title,
			ContentID:   it.ContentID,
			ExternalURL: it.ExternalURL,
		})
	}
	return out, nil
}

func (c *Client) GetFile(ctx context.Context, courseID, fileID int64) (domain.FileRecord, error) {
	var raw fileJSON
	if err := c.get(ctx, fmt.Sprintf("courses/%d/files/%d", courseID, fileID), &raw); err != nil {
		return domain.FileRecord{}, err
	}
	return toFile(raw), nil
}

func (c *Client) ListFilesInFolder(ctx context.Context, folderID int64) ([]domain.FileRecord, error) {
	var raw []fileJSON
	if err := c.get(ctx, fmt.Sprintf("folders/%d/files", folderID), &raw); err != nil {
		return nil, err
	}
	out := make([]domain.FileRecord, 0, len(raw))
	for _, f := range raw {
		out = append(out, toFile(f))
	}
	return out, nil
}

/* -------- plumbing -------- */

// get fetches endpoint and decodes it into out. Every failure comes back as *APIError;
// transport failures and "errors" payloads are logged at different levels.
func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	u, err := url.Parse(c.BaseURL + "/" + endpoint)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: fmt.Errorf("invalid base url: %w", err)}
	}
	if c.PerPage > 0 {
		q := u.Query()
		q.Set("per_page", strconv.Itoa(c.PerPage))
		u.RawQuery = q.Encode()
	}
	full := u.String()

	_, body, err := httpx.DoWithRetry(ctx, c.HTTP, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
		if err != nil {
			return nil, err
		}
		r.Header.Set("Accept", acceptJSON)
		r.Header.Set("Accept-Encoding", httpx.AcceptEncoding)
		r.Header.Set("Authorization", "Bearer "+c.Token)
		return r, nil
	}, c.Retry)

	if err != nil {
		var herr *httpx.HTTPError
		if errors.As(err, &herr) {
			apiErr := &APIError{Endpoint: endpoint, Status: herr.StatusCode, Err: err}
			if msgs, ok := errorMarker(herr.Body); ok {
				apiErr.Messages = msgs
			}
			c.logger().Warn(ctx, "canvas reported errors", "endpoint", endpoint, "status", herr.StatusCode, "messages", apiErr.Messages)
			return apiErr
		}
		c.logger().Error(ctx, "canvas request failed", "endpoint", endpoint, "err", err)
		return &APIError{Endpoint: endpoint, Network: true, Err: err}
	}

	if msgs, ok := errorMarker(body); ok {
		c.logger().Warn(ctx, "canvas reported errors", "endpoint", endpoint, "status", http.StatusOK, "messages", []string(msgs))
		return &APIError{Endpoint: endpoint, Status: http.StatusOK, Messages: msgs}
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger().Warn(ctx, "canvas payload not understood", "endpoint", endpoint, "err", err)
		return &APIError{Endpoint: endpoint, Status: http.StatusOK, Err: fmt.Errorf("decode payload: %w", err)}
	}
	return nil
}

func (c *Client) logger() logging.Logger {
	if c.Log == nil {
		return logging.Discard()
	}
	return c.Log
}

func toFolder(f folderJSON) domain.Folder {
	return domain.Folder{ID: f.ID, FullName: f.FullName, FilesCount: f.FilesCount}
}

func toFile(f fileJSON) domain.FileRecord {
	return domain.FileRecord{
		ID:          f.ID,
		DisplayName: f.DisplayName,
		URL:         f.URL,
		FolderID:    f.FolderID,
		Size:        f.Size,
	}
}

func itemKind(t string) domain.ItemKind {
	switch t {
	case "File":
		return domain.ItemFile
	case "ExternalUrl":
		return domain.ItemExternalURL
	default:
		return domain.ItemOther
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			return v
		}
	}
	return ""
}
