package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
)

// Backend endpoints consumed by the catalog repository.
const (
	PathSubjects  = "/materias"
	PathExams     = "/vestibulares"
	PathTopics    = "/assuntos"
	PathQuestions = "/questoes"
)

const maxResponseBytes = 16 << 20

// UpstreamObserver receives timing for every backend call.
type UpstreamObserver interface {
	ObserveUpstream(endpoint string, status int, duration time.Duration)
}

// CatalogOption configures the catalog repository.
type CatalogOption func(*CatalogRepository)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) CatalogOption {
	return func(r *CatalogRepository) {
		if client != nil {
			r.client = client
		}
	}
}

// WithObserver attaches an upstream metrics observer.
func WithObserver(observer UpstreamObserver) CatalogOption {
	return func(r *CatalogRepository) {
		r.observer = observer
	}
}

// CatalogRepository reads reference data and questions from the external
// question bank over HTTP. The base URL is the single shared backend location.
type CatalogRepository struct {
	baseURL  string
	client   *http.Client
	observer UpstreamObserver
	logger   *zap.Logger
}

// NewCatalogRepository constructs a catalog repository.
func NewCatalogRepository(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...CatalogOption) *CatalogRepository {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &CatalogRepository{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListSubjects returns every subject.
func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	var out []models.Subject
	if err := r.getJSON(ctx, PathSubjects, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListExams returns every exam.
func (r *CatalogRepository) ListExams(ctx context.Context) ([]models.Exam, error) {
	var out []models.Exam
	if err := r.getJSON(ctx, PathExams, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTopics returns every topic.
func (r *CatalogRepository) ListTopics(ctx context.Context) ([]models.Topic, error) {
	var out []models.Topic
	if err := r.getJSON(ctx, PathTopics, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchQuestions issues one GET to /questoes with the already encoded query.
// An empty query targets the bare path.
func (r *CatalogRepository) SearchQuestions(ctx context.Context, rawQuery string) ([]models.Question, error) {
	var out []models.Question
	if err := r.getJSON(ctx, PathQuestions, rawQuery, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Question{}
	}
	return out, nil
}

func (r *CatalogRepository) url(path, rawQuery string) string {
	if rawQuery == "" {
		return r.baseURL + path
	}
	return r.baseURL + path + "?" + rawQuery
}

func (r *CatalogRepository) getJSON(ctx context.Context, path, rawQuery string, dest interface{}) error {
	target := r.url(path, rawQuery)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to build backend request")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		r.observe(path, 0, start)
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}
	defer resp.Body.Close()
	r.observe(path, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return appErrors.Wrap(fmt.Errorf("GET %s: HTTP %d", path, resp.StatusCode), appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dest); err != nil {
		return appErrors.Wrap(fmt.Errorf("decode %s: %w", path, err), appErrors.ErrUpstreamPayload.Code, appErrors.ErrUpstreamPayload.Status, appErrors.ErrUpstreamPayload.Message)
	}

	r.logger.Debug("backend request", zap.String("url", target), zap.Int("status", resp.StatusCode))
	return nil
}

func (r *CatalogRepository) observe(path string, status int, start time.Time) {
	if r.observer == nil {
		return
	}
	r.observer.ObserveUpstream(path, status, time.Since(start))
}
