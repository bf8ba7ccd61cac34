package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// maxTargeted is the number of changes above which Jellyfin gets one full
// library refresh instead of per-path updates.
const maxTargeted = 50

// JellyfinNotifier reports changed movie folders to Jellyfin.
type JellyfinNotifier struct {
	baseURL string
	apiKey  string
	enabled bool
	client  *http.Client
}

func NewJellyfinNotifier(baseURL, apiKey string) *JellyfinNotifier {
	return &JellyfinNotifier{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		enabled: strings.TrimSpace(baseURL) != "" && strings.TrimSpace(apiKey) != "",
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (n *JellyfinNotifier) Name() string {
	return "jellyfin"
}

func (n *JellyfinNotifier) Enabled() bool {
	return n.enabled
}

func (n *JellyfinNotifier) Ping(ctx context.Context) error {
	if !n.enabled {
		return nil
	}
	_, err := n.doJSONRequest(ctx, http.MethodGet, "/System/Info", nil)
	return err
}

type mediaUpdate struct {
	Path       string `json:"Path"`
	UpdateType string `json:"UpdateType"`
}

// Notify posts the changed folders to /Library/Media/Updated and falls back to
// a full library refresh when that fails or the batch is large. A single
// modified movie gets a metadata refresh of its item.
func (n *JellyfinNotifier) Notify(ctx context.Context, changes []Change) error {
	if !n.enabled || len(changes) == 0 {
		return nil
	}
	if len(changes) == 1 && changes[0].Kind == Modified {
		return n.RefreshMovie(ctx, changes[0])
	}
	if len(changes) > maxTargeted {
		return n.refreshLibrary(ctx)
	}

	updates := make([]mediaUpdate, 0, len(changes))
	for _, c := range changes {
		path := normalizePath(c.Path)
		if path == "." {
			continue
		}
		updates = append(updates, mediaUpdate{Path: path, UpdateType: c.Kind.String()})
	}
	body, err := json.Marshal(map[string]any{"Updates": updates})
	if err != nil {
		return err
	}
	if _, err := n.doJSONRequest(ctx, http.MethodPost, "/Library/Media/Updated", body); err != nil {
		if ctx.Err() != nil {
			return err
		}
		return n.refreshLibrary(ctx)
	}
	return nil
}

// Item is a Jellyfin library item.
type Item struct {
	ID             string `json:"Id"`
	Name           string `json:"Name"`
	Path           string `json:"Path"`
	ProductionYear int    `json:"ProductionYear"`
}

// FindMovie searches Jellyfin for the item of a movie folder, matching the
// path first and title plus year second. It returns nil when nothing matches.
func (n *JellyfinNotifier) FindMovie(ctx context.Context, c Change) (*Item, error) {
	term := strings.TrimSpace(c.Title)
	if term == "" {
		term = deriveSearchTermFromPath(c.Path)
	}
	if term == "" {
		return nil, fmt.Errorf("unable to determine search term for %s", c.Path)
	}

	q := url.Values{}
	q.Set("SearchTerm", term)
	q.Set("Recursive", "true")
	q.Set("IncludeItemTypes", "Movie")
	q.Set("Fields", "Path,ProductionYear")

	body, err := n.doJSONRequest(ctx, http.MethodGet, "/Items?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Items []Item `json:"Items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode jellyfin search response: %w", err)
	}

	dir := normalizePath(c.Path)
	for i, item := range resp.Items {
		if normalizePath(filepath.Dir(item.Path)) == dir || normalizePath(item.Path) == dir {
			return &resp.Items[i], nil
		}
	}
	for i, item := range resp.Items {
		if c.Title != "" && strings.EqualFold(strings.TrimSpace(item.Name), strings.TrimSpace(c.Title)) {
			if c.Year == 0 || item.ProductionYear == 0 || item.ProductionYear == c.Year {
				return &resp.Items[i], nil
			}
		}
	}
	return nil, nil
}

// RefreshMovie refreshes the metadata of a single known movie.
func (n *JellyfinNotifier) RefreshMovie(ctx context.Context, c Change) error {
	item, err := n.FindMovie(ctx, c)
	if err != nil {
		return err
	}
	if item == nil {
		return n.refreshLibrary(ctx)
	}
	_, err = n.doJSONRequest(ctx, http.MethodPost, "/Items/"+url.PathEscape(item.ID)+"/Refresh", nil)
	return err
}

func (n *JellyfinNotifier) refreshLibrary(ctx context.Context) error {
	_, err := n.doJSONRequest(ctx, http.MethodPost, "/Library/Refresh", nil)
	return err
}

func (n *JellyfinNotifier) doJSONRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, n.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", n.authHeader())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jellyfin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("jellyfin returned status %d for %s %s", resp.StatusCode, method, path)
	}

	var out json.RawMessage
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return out, nil
}

func (n *JellyfinNotifier) authHeader() string {
	return fmt.Sprintf(`MediaBrowser Token="%s", Client="mediashelf", Device="mediashelf", DeviceId="mediashelf", Version="1.0.0"`, n.apiKey)
}

func deriveSearchTermFromPath(path string) string {
	base := strings.TrimSpace(filepath.Base(path))
	if base == "" || base == "." {
		return ""
	}
	base = strings.ReplaceAll(base, ".", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}

func normalizePath(path string) string {
	return filepath.Clean(strings.TrimSpace(path))
}
