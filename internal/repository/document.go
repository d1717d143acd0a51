package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"wordvault-backend/internal/cache"
	"wordvault-backend/internal/models"
)

const (
	maxRetries        = 2 // additional attempts after the first
	defaultRetryDelay = 1 * time.Second
)

// DocumentRepo reads and fully replaces the one remote JSON document holding
// the word collection. Every call degrades to the local cache: missing
// credentials route straight to the cache, and remote failures (after the
// retry budget is spent) fall back to it instead of surfacing an error.
type DocumentRepo struct {
	httpClient *http.Client
	cache      *cache.Store
	baseURL    string
	retryDelay time.Duration
}

func NewDocumentRepo(cacheStore *cache.Store, baseURL string) *DocumentRepo {
	return &DocumentRepo{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cacheStore,
		baseURL:    strings.TrimRight(baseURL, "/"),
		retryDelay: defaultRetryDelay,
	}
}

// binReadResponse is the wrapper the bin API puts around reads.
type binReadResponse struct {
	Record models.Document `json:"record"`
}

// binCreateResponse is returned when a new bin is provisioned.
type binCreateResponse struct {
	Metadata struct {
		ID string `json:"id"`
	} `json:"metadata"`
}

// FetchAll returns the full word collection. It never returns an error:
// without credentials it reads the cached snapshot, and a remote failure
// after retries degrades silently to the snapshot. A successful remote read
// refreshes the snapshot as a side effect.
func (r *DocumentRepo) FetchAll(ctx context.Context) []models.Word {
	creds := r.cache.Credentials()
	if !creds.Configured() {
		return r.cache.Snapshot()
	}

	var doc models.Document
	err := r.withRetry(ctx, func() error {
		return r.readBin(ctx, creds, &doc)
	})
	if err != nil {
		log.Printf("fetch bin %s failed, serving cached snapshot: %v", creds.BinID, err)
		return r.cache.Snapshot()
	}

	words := doc.Words
	if words == nil {
		words = []models.Word{}
	}
	r.cache.SetSnapshot(words)
	return words
}

// SaveAll replaces the remote document with the given collection and reports
// whether the remote write succeeded. The snapshot is updated to the given
// collection in every case, so local reads stay consistent with the caller's
// intent even when the remote write failed.
func (r *DocumentRepo) SaveAll(ctx context.Context, words []models.Word) bool {
	words = stripLearned(words)
	defer r.cache.SetSnapshot(words)

	creds := r.cache.Credentials()
	if !creds.Configured() {
		return true
	}

	doc := models.Document{
		Words: words,
		Meta: models.CollectionMeta{
			TotalWords:  len(words),
			LastUpdated: time.Now().UTC(),
		},
	}

	err := r.withRetry(ctx, func() error {
		return r.writeBin(ctx, creds, doc)
	})
	if err != nil {
		log.Printf("save bin %s failed, snapshot kept locally: %v", creds.BinID, err)
		return false
	}
	return true
}

// TestConnection reports whether a bin id is configured and readable.
func (r *DocumentRepo) TestConnection(ctx context.Context) bool {
	creds := r.cache.Credentials()
	if creds.BinID == "" {
		return false
	}

	var doc models.Document
	err := r.withRetry(ctx, func() error {
		return r.readBin(ctx, creds, &doc)
	})
	return err == nil
}

// ProvisionBin creates a new empty remote document and returns its id.
// Used by first-time setup only.
func (r *DocumentRepo) ProvisionBin(ctx context.Context, apiKey, name string) (string, error) {
	doc := models.Document{
		Words: []models.Word{},
		Meta: models.CollectionMeta{
			CreatedAt:   time.Now().UTC(),
			LastUpdated: time.Now().UTC(),
		},
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	var created binCreateResponse
	err = r.withRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/b", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Master-Key", apiKey)
		req.Header.Set("X-Bin-Name", name)

		return r.do(req, &created)
	})
	if err != nil {
		return "", fmt.Errorf("failed to provision bin: %w", err)
	}
	if created.Metadata.ID == "" {
		return "", fmt.Errorf("bin API returned no bin id")
	}
	return created.Metadata.ID, nil
}

func (r *DocumentRepo) readBin(ctx context.Context, creds models.Credentials, doc *models.Document) error {
	url := fmt.Sprintf("%s/b/%s/latest", r.baseURL, creds.BinID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Master-Key", creds.APIKey)

	var wrapped binReadResponse
	if err := r.do(req, &wrapped); err != nil {
		return err
	}
	*doc = wrapped.Record
	return nil
}

func (r *DocumentRepo) writeBin(ctx context.Context, creds models.Credentials, doc models.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/b/%s", r.baseURL, creds.BinID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", creds.APIKey)

	return r.do(req, nil)
}

func (r *DocumentRepo) do(req *http.Request, out interface{}) error {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("bin API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// withRetry runs fn up to maxRetries extra times with a fixed delay between
// attempts. Explicit cancellation is not retried.
func (r *DocumentRepo) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.retryDelay):
			}
		}

		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			return err
		}
	}
	return err
}

// stripLearned copies the collection without the device-local learned flag,
// which is never written to the bin or the snapshot.
func stripLearned(words []models.Word) []models.Word {
	out := make([]models.Word, len(words))
	copy(out, words)
	for i := range out {
		out[i].IsLearned = false
	}
	return out
}
