package webapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/i2y/intakeq-mcp/internal/domain"
	"github.com/i2y/intakeq-mcp/internal/usecase"
)

// AuthMode selects where the IntakeQ credential of a request comes from.
type AuthMode string

const (
	// AuthHeader takes the credential from X-Auth-Key, falling back to the
	// configured key.
	AuthHeader AuthMode = "header"
	// AuthBearer always uses the configured key and gates the API behind a
	// shared bearer token.
	AuthBearer AuthMode = "bearer"
)

const credentialHeader = "X-Auth-Key"

// Dispatcher runs registry operations.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args domain.Args, credential string) (any, error)
}

// Metrics is the inbound metrics sink plus its scrape endpoint.
type Metrics interface {
	InboundObserver
	Handler() http.Handler
}

// Options configures the HTTP facade.
type Options struct {
	ServerName        string
	ServerVersion     string
	AuthMode          AuthMode
	BearerToken       string
	DefaultCredential string
	AllowedOrigins    []string
	RateLimit         int
	RatePeriod        time.Duration
	// MCPHandler, when set, is mounted at /mcp.
	MCPHandler http.Handler
	Metrics    Metrics
}

// Handlers serves the REST facade over the operation registry.
type Handlers struct {
	dispatcher  Dispatcher
	registry    usecase.OperationRegistry
	listUC      *usecase.ListOperationsUseCase
	credentials usecase.CredentialResolver
	opts        Options
	doc         *document
	logger      *slog.Logger
}

// NewHandlers builds the handlers and renders the OpenAPI document. It fails
// when a route names an operation the registry does not know.
func NewHandlers(
	dispatcher Dispatcher,
	registry usecase.OperationRegistry,
	listUC *usecase.ListOperationsUseCase,
	opts Options,
	logger *slog.Logger,
) (*Handlers, error) {
	if opts.AuthMode == "" {
		opts.AuthMode = AuthHeader
	}
	h := &Handlers{
		dispatcher:  dispatcher,
		registry:    registry,
		listUC:      listUC,
		credentials: usecase.CredentialResolver{Default: opts.DefaultCredential},
		opts:        opts,
		logger:      logger.With("component", "webapi"),
	}
	oas, err := buildDocument(context.Background(), h)
	if err != nil {
		return nil, err
	}
	if h.doc, err = renderDocument(oas); err != nil {
		return nil, err
	}
	if opts.AuthMode == AuthBearer && opts.BearerToken == "" {
		h.logger.Warn("Bearer auth mode without a token, the API is not gated")
	}
	return h, nil
}

// RegisterRoutes mounts every route on mux. Operation routes and the listing
// sit behind the bearer gate in bearer mode.
func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	public := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, withGzip(fn))
	}
	gated := func(pattern string, next http.Handler) {
		mux.Handle(pattern, h.gate(withGzip(next)))
	}

	public("GET /{$}", h.handleInfo)
	public("GET /health", h.handleHealth)
	public("GET /openapi.json", h.handleOpenAPI("application/json", func(d *document) []byte { return d.json }))
	public("GET /openapi.yaml", h.handleOpenAPI("application/yaml", func(d *document) []byte { return d.yaml }))
	if h.opts.Metrics != nil {
		mux.Handle("GET /metrics", h.opts.Metrics.Handler())
	}

	gated("GET /operations", http.HandlerFunc(h.handleListOperations))
	gated("POST /operations/{name}", http.HandlerFunc(h.handleDispatch))
	for _, rt := range operationRoutes {
		gated(rt.pattern(), h.operationHandler(rt))
	}

	if h.opts.MCPHandler != nil {
		// Streamed responses must not be buffered by the gzip writer.
		mux.Handle("/mcp", h.gate(h.opts.MCPHandler))
	}
}

// Handler returns the complete facade with its middleware chain.
func (h *Handlers) Handler() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	var next http.Handler = mux
	next = rateLimit(h.opts.RateLimit, h.opts.RatePeriod, h.opts.Metrics, next)
	next = observe(h.opts.Metrics, next)
	next = withRequestID(next)
	return withCORS(h.opts.AllowedOrigins, next)
}

func (h *Handlers) gate(next http.Handler) http.Handler {
	if h.opts.AuthMode != AuthBearer {
		return next
	}
	return bearerGate(h.opts.BearerToken, next)
}

func (h *Handlers) credential(r *http.Request) string {
	if h.opts.AuthMode == AuthBearer {
		return h.opts.DefaultCredential
	}
	return h.credentials.Resolve(r.Context(), r.Header.Get(credentialHeader))
}

func (h *Handlers) operationHandler(rt route) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		args, err := rt.bind(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.run(w, r, rt.operation, withPathValues(r, rt, args))
	})
}

func (h *Handlers) handleDispatch(w http.ResponseWriter, r *http.Request) {
	args, err := fromBody(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.run(w, r, r.PathValue("name"), args)
}

func (h *Handlers) run(w http.ResponseWriter, r *http.Request, name string, args domain.Args) {
	h.logger.Debug("Dispatching",
		slog.String("operation", name),
		slog.String("request_id", requestID(r.Context())),
	)
	result, err := h.dispatcher.Dispatch(r.Context(), name, args, h.credential(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeResult(w, name, result)
}

type operationView struct {
	Name        string      `json:"name"`
	Resource    string      `json:"resource"`
	Summary     string      `json:"summary"`
	Method      string      `json:"method"`
	Path        string      `json:"path"`
	Params      []paramView `json:"params"`
	ReadOnly    bool        `json:"readOnly"`
	Destructive bool        `json:"destructive"`
}

type paramView struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

func viewOf(d domain.OperationDescriptor) operationView {
	v := operationView{
		Name: d.Name, Resource: d.Resource, Summary: d.Summary,
		Method: d.Method, Path: d.Path,
		Params:   make([]paramView, 0, len(d.Params)),
		ReadOnly: d.ReadOnly, Destructive: d.Destructive,
	}
	for _, p := range d.Params {
		v.Params = append(v.Params, paramView{
			Name: p.Name, Type: string(p.Type), Required: p.Required,
			Description: p.Description, Enum: p.Enum,
		})
	}
	return v
}

func (h *Handlers) handleListOperations(w http.ResponseWriter, r *http.Request) {
	descriptors := h.listUC.Execute(r.URL.Query().Get("resource"))
	views := make([]operationView, 0, len(descriptors))
	for _, d := range descriptors {
		views = append(views, viewOf(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"operations": views, "count": len(views)})
}

func (h *Handlers) handleInfo(w http.ResponseWriter, _ *http.Request) {
	info := map[string]any{
		"name":     h.opts.ServerName,
		"version":  h.opts.ServerVersion,
		"status":   "running",
		"authMode": h.opts.AuthMode,
		"openapi":  "/openapi.json",
		"routes": []string{
			"/appointments", "/clients", "/invoices", "/notes", "/questionnaires", "/operations",
		},
	}
	if h.opts.MCPHandler != nil {
		info["mcpEndpoint"] = "/mcp"
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	authConfigured := h.opts.AuthMode != AuthBearer || h.opts.BearerToken != ""
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"service":            h.opts.ServerName,
		"version":            h.opts.ServerVersion,
		"intakeq_configured": h.opts.DefaultCredential != "",
		"auth_configured":    authConfigured,
	})
}

func (h *Handlers) handleOpenAPI(contentType string, pick func(*document) []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		if _, err := w.Write(pick(h.doc)); err != nil {
			h.logger.Debug("Failed to write OpenAPI document", slog.Any("error", err))
		}
	}
}

// String describes the facade for startup logging.
func (h *Handlers) String() string {
	return fmt.Sprintf("%s %s (auth=%s, routes=%d)", h.opts.ServerName, h.opts.ServerVersion, h.opts.AuthMode, len(operationRoutes))
}
