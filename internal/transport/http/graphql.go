package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	dErrors "printsettings/pkg/domain-errors"
	"printsettings/pkg/platform/httputil"
	"printsettings/pkg/requestcontext"
)

const maxRequestBytes = 1 << 20

// GraphQLRequest is the standard GraphQL-over-HTTP request envelope.
type GraphQLRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

// GraphQLHandler executes requests against the schema.
type GraphQLHandler struct {
	schema graphql.Schema
	logger *slog.Logger
}

func NewGraphQLHandler(schema graphql.Schema, logger *slog.Logger) *GraphQLHandler {
	return &GraphQLHandler{schema: schema, logger: logger}
}

// Register mounts POST and GET /graphql. GET only runs queries.
func (h *GraphQLHandler) Register(r chi.Router) {
	r.Post("/graphql", h.handlePost)
	r.Get("/graphql", h.handleGet)
}

func (h *GraphQLHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req GraphQLRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid graphql request body",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	h.execute(w, r, req)
}

func (h *GraphQLHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := GraphQLRequest{
		Query:         q.Get("query"),
		OperationName: q.Get("operationName"),
	}
	if raw := q.Get("variables"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid variables"))
			return
		}
	}
	if isMutation(req) {
		w.Header().Set("Allow", http.MethodPost)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "mutations require POST"))
		return
	}
	h.execute(w, r, req)
}

func (h *GraphQLHandler) execute(w http.ResponseWriter, r *http.Request, req GraphQLRequest) {
	if req.Query == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "query is required"))
		return
	}
	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
	httputil.WriteJSON(w, http.StatusOK, result)
}

// isMutation reports whether the operation that would run is a mutation.
// Unparseable documents report false and fail later with a GraphQL error.
func isMutation(req GraphQLRequest) bool {
	doc, err := parser.Parse(parser.ParseParams{Source: req.Query})
	if err != nil {
		return false
	}
	op, err := selectOperation(doc, req.OperationName)
	if err != nil {
		return false
	}
	return op.Operation == ast.OperationTypeMutation
}

func selectOperation(doc *ast.Document, name string) (*ast.OperationDefinition, error) {
	var found *ast.OperationDefinition
	for _, def := range doc.Definitions {
		op, ok := def.(*ast.OperationDefinition)
		if !ok {
			continue
		}
		if name == "" {
			if found != nil {
				return nil, errors.New("operation name required")
			}
			found = op
			continue
		}
		if op.Name != nil && op.Name.Value == name {
			return op, nil
		}
	}
	if found == nil {
		return nil, errors.New("operation not found")
	}
	return found, nil
}
