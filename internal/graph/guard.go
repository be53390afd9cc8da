package graph

//go:generate mockgen -source=guard.go -destination=mocks/mocks.go -package=mocks Finder

import (
	"context"
	"log/slog"

	"github.com/graphql-go/graphql"

	"printsettings/internal/platform/metrics"
	"printsettings/internal/user/models"
	"printsettings/pkg/requestcontext"
)

// Finder resolves the principal's own record. The credential service satisfies it.
type Finder interface {
	Find(ctx context.Context, key string, kind models.SearchKind) (*models.User, error)
}

// Decision is the terminal state of one guarded field resolution.
type Decision string

const (
	DecisionResolved           Decision = "resolved"
	DecisionPublic             Decision = "public"
	DecisionNotAuthenticated   Decision = "not_authenticated"
	DecisionNotAuthorized      Decision = "not_authorized"
	DecisionVerificationFailed Decision = "verification_failed"
)

// Guard enforces owner-only access on privacy-sensitive fields.
type Guard struct {
	users   Finder
	public  map[string]struct{}
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type GuardOption func(*Guard)

func WithGuardMetrics(m *metrics.Metrics) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// NewGuard builds a guard. publicOperations lists root field names (not
// client-chosen operation names) whose whole result tree skips the checks.
func NewGuard(users Finder, publicOperations []string, opts ...GuardOption) *Guard {
	g := &Guard{
		users:  users,
		public: make(map[string]struct{}, len(publicOperations)),
		logger: slog.Default(),
	}
	for _, op := range publicOperations {
		if op != "" {
			g.public[op] = struct{}{}
		}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Wrap returns a resolver that authorizes the field before delegating to next.
// When next is nil the value is read off the parent through table.
//
// A denial is a field error: the field resolves to null and the rest of the
// response is unaffected.
func (g *Guard) Wrap(next graphql.FieldResolveFn, table FieldTable) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		decision, err := g.authorize(p)
		g.record(p, decision)
		if err != nil {
			return nil, err
		}
		if next != nil {
			return next(p)
		}
		return table.Read(p.Source, p.Info.FieldName), nil
	}
}

func (g *Guard) authorize(p graphql.ResolveParams) (Decision, error) {
	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}

	sel, err := locate(p.Info)
	if err != nil {
		g.logger.WarnContext(ctx, "cannot locate guarded field in operation",
			"field", p.Info.FieldName,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return DecisionNotAuthenticated, errNotAuthenticated
	}
	if _, ok := g.public[fieldName(sel.root)]; ok {
		return DecisionPublic, nil
	}

	principal, ok := requestcontext.PrincipalFrom(ctx)
	if !ok {
		return DecisionNotAuthenticated, errNotAuthenticated
	}

	id := stringArgument(sel.parent, "id", p.Info.VariableValues)
	email := stringArgument(sel.parent, "email", p.Info.VariableValues)
	if id == "" && email == "" {
		return DecisionNotAuthenticated, errNotAuthenticated
	}

	self, err := g.users.Find(ctx, principal.UserID, models.ByID)
	if err != nil || self == nil {
		return DecisionVerificationFailed, errVerificationFailed
	}

	matched := (id != "" && id == self.ID) || (email != "" && email == self.Email)
	if !matched {
		return DecisionNotAuthorized, errNotAuthorized
	}
	// The keys only describe what the caller asked for; the parent is what the
	// store actually returned.
	if owner, ok := p.Source.(*models.User); ok && owner != nil && owner.ID != self.ID {
		return DecisionNotAuthorized, errNotAuthorized
	}
	return DecisionResolved, nil
}

func (g *Guard) record(p graphql.ResolveParams, decision Decision) {
	field := p.Info.FieldName
	if p.Info.ParentType != nil {
		field = p.Info.ParentType.Name() + "." + field
	}
	g.metrics.ObserveFieldDecision(field, string(decision))

	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	g.logger.DebugContext(ctx, "field authorization",
		"field", field,
		"decision", string(decision),
		"request_id", requestcontext.RequestID(ctx),
	)
}
