package variables

import (
	"bytes"
	"context"
	"log/slog"
	"strings"

	"github.com/flowgrid/flowgrid-go/client"
)

// Config holds the variable API endpoint layout.
type Config struct {
	BasePath string `env:"FLOWGRID_VARIABLES_PATH" envDefault:"/api/v1/variables" yaml:"base_path"`
}

// DefaultConfig returns the standard endpoint layout.
func DefaultConfig() Config {
	return Config{BasePath: "/api/v1/variables"}
}

// Service manages user variables through the platform API. Safe for
// concurrent use.
type Service struct {
	api *client.Client
	cfg Config
	log *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for variable events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a variable Service on top of api.
func New(api *client.Client, cfg Config, opts ...Option) *Service {
	s := &Service{
		api: api,
		cfg: cfg,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("component", "variables"))
	return s
}

// List returns the variables matching filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]Variable, error) {
	var out []Variable
	err := s.api.Get(ctx, s.cfg.BasePath, &out, client.WithQuery(filter.query()))
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// Get returns a single variable by ID.
func (s *Service) Get(ctx context.Context, id string) (*Variable, error) {
	var out Variable
	if err := s.api.Get(ctx, s.cfg.BasePath+"/"+id, &out); err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

// Create stores a new variable.
func (s *Service) Create(ctx context.Context, input Input) (*Variable, error) {
	var out Variable
	if err := s.api.Post(ctx, s.cfg.BasePath, input, &out); err != nil {
		return nil, translateError(err)
	}
	s.log.InfoContext(ctx, "variable created",
		slog.String("key", out.Key),
		slog.String("scope", string(out.Scope)))
	return &out, nil
}

// Update replaces a variable's definition.
func (s *Service) Update(ctx context.Context, id string, input Input) (*Variable, error) {
	var out Variable
	if err := s.api.Put(ctx, s.cfg.BasePath+"/"+id, input, &out); err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

// Delete removes a variable.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, s.cfg.BasePath+"/"+id, nil); err != nil {
		return translateError(err)
	}
	s.log.InfoContext(ctx, "variable deleted", slog.String("id", id))
	return nil
}

// CreateBulk stores several variables in one request. The server treats
// the batch atomically; on failure nothing is created.
func (s *Service) CreateBulk(ctx context.Context, inputs []Input) ([]Variable, error) {
	body := map[string]any{"variables": inputs}
	var out struct {
		Variables []Variable `json:"variables"`
	}
	if err := s.api.Post(ctx, s.cfg.BasePath+"/bulk", body, &out); err != nil {
		return nil, translateError(err)
	}
	s.log.InfoContext(ctx, "variables created in bulk", slog.Int("count", len(out.Variables)))
	return out.Variables, nil
}

// UpdateBulk applies several updates in one request, keyed by variable
// ID.
func (s *Service) UpdateBulk(ctx context.Context, updates map[string]Input) ([]Variable, error) {
	body := map[string]any{"variables": updates}
	var out struct {
		Variables []Variable `json:"variables"`
	}
	if err := s.api.Put(ctx, s.cfg.BasePath+"/bulk", body, &out); err != nil {
		return nil, translateError(err)
	}
	s.log.InfoContext(ctx, "variables updated in bulk", slog.Int("count", len(out.Variables)))
	return out.Variables, nil
}

// DeleteBulk removes several variables in one request.
func (s *Service) DeleteBulk(ctx context.Context, ids []string) error {
	body := map[string]any{"ids": ids}
	if err := s.api.Post(ctx, s.cfg.BasePath+"/bulk-delete", body, nil); err != nil {
		return translateError(err)
	}
	s.log.InfoContext(ctx, "variables deleted in bulk", slog.Int("count", len(ids)))
	return nil
}

// Validate checks input server-side without persisting anything.
func (s *Service) Validate(ctx context.Context, input Input) (*ValidationResult, error) {
	var out ValidationResult
	if err := s.api.Post(ctx, s.cfg.BasePath+"/validate", input, &out); err != nil {
		return nil, translateError(err)
	}
	return &out, nil
}

// Sync pushes local variables to the server and returns what changed.
// Conflicting entries are reported, never overwritten; the caller
// decides how to resolve each conflict.
func (s *Service) Sync(ctx context.Context, locals []Variable) (*SyncResult, error) {
	body := map[string]any{"variables": locals}
	var out SyncResult
	if err := s.api.Post(ctx, s.cfg.BasePath+"/sync", body, &out); err != nil {
		return nil, translateError(err)
	}
	s.log.InfoContext(ctx, "variables synced",
		slog.Int("synced", len(out.Synced)),
		slog.Int("conflicts", len(out.Conflicts)))
	return &out, nil
}

// Export downloads the matching variables serialized in format.
func (s *Service) Export(ctx context.Context, format ExportFormat, filter Filter) ([]byte, error) {
	query := filter.query()
	query["format"] = string(format)
	var out []byte
	err := s.api.Get(ctx, s.cfg.BasePath+"/export", &out,
		client.WithQuery(query), client.SkipCache())
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// Import uploads a variables file in format. Rows the server rejects
// are reported in the result, not as an error.
func (s *Service) Import(ctx context.Context, format ExportFormat, filename string, data []byte) (*ImportResult, error) {
	fields := map[string]string{"format": string(format)}
	var out ImportResult
	err := s.api.Upload(ctx, s.cfg.BasePath+"/import", "file", filename,
		bytes.NewReader(data), fields, &out)
	if err != nil {
		return nil, translateError(err)
	}
	s.log.InfoContext(ctx, "variables imported",
		slog.Int("imported", out.Imported),
		slog.Int("skipped", out.Skipped))
	return &out, nil
}

// query converts a Filter to request query parameters, dropping unset
// fields.
func (f Filter) query() map[string]any {
	q := make(map[string]any)
	if f.Scope != "" {
		q["scope"] = string(f.Scope)
	}
	if f.Type != "" {
		q["type"] = string(f.Type)
	}
	if f.WorkflowID != "" {
		q["workflowId"] = f.WorkflowID
	}
	if f.Search != "" {
		q["search"] = f.Search
	}
	if len(f.Tags) > 0 {
		q["tags"] = strings.Join(f.Tags, ",")
	}
	if f.IsSecret != nil {
		q["isSecret"] = *f.IsSecret
	}
	if f.Page > 0 {
		q["page"] = f.Page
	}
	if f.Limit > 0 {
		q["limit"] = f.Limit
	}
	return q
}
