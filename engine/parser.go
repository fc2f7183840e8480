package engine

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Parser is the snapshot's external dependency: something that can fetch a
// Document for a namespace and enumerate the namespaces to fetch. The engine
// holds it behind this interface so tests can substitute a file-backed
// implementation without touching the network.
type Parser interface {
	Parse(ctx context.Context, namespaceKey string) (Document, error)
	GetNamespaces() []string
}

// HTTPParser is the default Parser: it fetches a Document over HTTP from an
// upstream Flipt-compatible evaluation snapshot endpoint.
type HTTPParser struct {
	baseURL    string
	namespaces []string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPParser builds an HTTPParser. baseURL defaults to
// http://localhost:8080 when empty, matching FLIPT_REMOTE_URL's default.
func NewHTTPParser(baseURL string, namespaces []string, logger zerolog.Logger) *HTTPParser {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &HTTPParser{
		baseURL:    baseURL,
		namespaces: namespaces,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With().Str("component", "http_parser").Logger(),
	}
}

func (p *HTTPParser) GetNamespaces() []string { return p.namespaces }

func (p *HTTPParser) Parse(ctx context.Context, namespaceKey string) (Document, error) {
	url := fmt.Sprintf("%s/internal/v1/evaluation/snapshot/namespace/%s", p.baseURL, namespaceKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Document{}, &ParseError{Message: "failed to build snapshot request", Cause: err}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Document{}, &ParseError{Message: "failed to fetch snapshot", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, &ParseError{Message: "failed to read snapshot body", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn().Int("status", resp.StatusCode).Str("namespace", namespaceKey).Msg("non-200 response fetching snapshot")
		return Document{}, &ParseError{Message: fmt.Sprintf("unexpected status %d fetching snapshot for namespace %s", resp.StatusCode, namespaceKey)}
	}

	return decodeDocument(body)
}

// FileParser is a file-backed Parser used by tests (the Go analogue of the
// source's TestParser): it reads a single JSON file from disk and returns it
// verbatim for every namespace it's configured to serve, regardless of which
// namespace key the Document itself claims.
type FileParser struct {
	path       string
	namespaces []string
}

// NewFileParser reads nothing eagerly; the file is read fresh on every
// Parse call so tests can mutate it between refresh cycles.
func NewFileParser(path string, namespaces []string) *FileParser {
	return &FileParser{path: path, namespaces: namespaces}
}

func (p *FileParser) GetNamespaces() []string { return p.namespaces }

func (p *FileParser) Parse(_ context.Context, _ string) (Document, error) {
	body, err := os.ReadFile(p.path)
	if err != nil {
		return Document{}, &ParseError{Message: "failed to read test fixture", Cause: err}
	}
	return decodeDocument(body)
}
