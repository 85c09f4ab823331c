package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/EvegeniyNekrasov/Nexo/internal/document"
)

const defaultRequestTimeout = 10 * time.Second

// documentEnvelope is the body of GET and PUT /files/{id}/document.
type documentEnvelope struct {
	Document json.RawMessage `json:"document"`
}

// HTTPRemote talks to the document service over HTTP.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
	token   string
}

type HTTPOption func(*HTTPRemote)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(r *HTTPRemote) { r.client = c }
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) HTTPOption {
	return func(r *HTTPRemote) { r.token = token }
}

func NewHTTPRemote(baseURL string, opts ...HTTPOption) *HTTPRemote {
	r := &HTTPRemote{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *HTTPRemote) documentURL(docID string) string {
	return r.baseURL + "/files/" + url.PathEscape(docID) + "/document"
}

func (r *HTTPRemote) Load(ctx context.Context, docID string) (document.Scene, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.documentURL(docID), nil)
	if err != nil {
		return document.Scene{}, fmt.Errorf("build load request: %w", err)
	}
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return document.Scene{}, fmt.Errorf("load document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return document.Scene{}, fmt.Errorf("load document: %w: %d", ErrRemoteStatus, resp.StatusCode)
	}

	var env documentEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return document.Scene{}, fmt.Errorf("decode document: %w", err)
	}
	scene, err := document.ParseScene(env.Document)
	if err != nil {
		return document.Scene{}, fmt.Errorf("decode document: %w", err)
	}
	return scene, nil
}

func (r *HTTPRemote) Save(ctx context.Context, docID string, scene document.Scene) error {
	data, err := json.Marshal(scene)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	body, err := json.Marshal(documentEnvelope{Document: data})
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, r.documentURL(docID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	r.authorize(req)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("save document: %w: %d", ErrRemoteStatus, resp.StatusCode)
	}
	return nil
}

func (r *HTTPRemote) authorize(req *http.Request) {
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
}
