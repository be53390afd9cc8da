package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"printsettings/internal/graph/mocks"
	"printsettings/internal/platform/metrics"
	"printsettings/internal/user/models"
	"printsettings/pkg/requestcontext"
)

type GuardSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	finder  *mocks.MockFinder
	metrics *metrics.Metrics
	schema  graphql.Schema
	owner   *models.User
	// served is what the user root field returns, independent of its arguments.
	served *models.User
}

func TestGuardSuite(t *testing.T) {
	suite.Run(t, new(GuardSuite))
}

func (s *GuardSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.finder = mocks.NewMockFinder(s.ctrl)
	s.metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	s.owner = &models.User{ID: "u1", Email: "a@x.com"}
	s.served = s.owner

	guard := NewGuard(s.finder, []string{"signup"}, WithGuardMetrics(s.metrics))

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id":    &graphql.Field{Type: graphql.String, Resolve: guard.Wrap(nil, userFields)},
			"email": &graphql.Field{Type: graphql.String, Resolve: guard.Wrap(nil, userFields)},
			"nickname": &graphql.Field{
				Type: graphql.String,
				Resolve: guard.Wrap(func(graphql.ResolveParams) (interface{}, error) {
					return "nick", nil
				}, nil),
			},
		},
	})
	keys := graphql.FieldConfigArgument{
		"id":    &graphql.ArgumentConfig{Type: graphql.String},
		"email": &graphql.ArgumentConfig{Type: graphql.String},
	}
	serve := func(graphql.ResolveParams) (interface{}, error) { return s.served, nil }

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"user": &graphql.Field{Type: userType, Args: keys, Resolve: serve},
				"users": &graphql.Field{
					Type: graphql.NewList(userType),
					Args: keys,
					Resolve: func(graphql.ResolveParams) (interface{}, error) {
						return []*models.User{s.served}, nil
					},
				},
			},
		}),
		Mutation: graphql.NewObject(graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"signup": &graphql.Field{Type: userType, Resolve: serve},
			},
		}),
	})
	s.Require().NoError(err)
	s.schema = schema
}

func (s *GuardSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GuardSuite) asOwner() context.Context {
	return requestcontext.WithPrincipal(context.Background(), requestcontext.Principal{UserID: "u1", Subject: "u1", TokenID: "jti-1"})
}

func (s *GuardSuite) do(ctx context.Context, query string) *graphql.Result {
	return graphql.Do(graphql.Params{Schema: s.schema, RequestString: query, Context: ctx})
}

func (s *GuardSuite) decisions(field string, d Decision) float64 {
	return promtest.ToFloat64(s.metrics.FieldDecisions.WithLabelValues(field, string(d)))
}

func (s *GuardSuite) TestPublicRootSkipsVerification() {
	res := s.do(context.Background(), `mutation { signup { id email } }`)
	s.Require().Empty(res.Errors)
	s.Equal("u1", lookup(res.Data, "signup", "id"))
	s.Equal(float64(1), s.decisions("User.id", DecisionPublic))
}

func (s *GuardSuite) TestMissingKeysIsNotAuthenticated() {
	res := s.do(s.asOwner(), `{ user { id } }`)
	s.Equal([]string{"Not Authenticated"}, messages(res.Errors))
	s.Equal(float64(1), s.decisions("User.id", DecisionNotAuthenticated))
}

func (s *GuardSuite) TestLookupFailureIsVerificationFailure() {
	s.finder.EXPECT().Find(gomock.Any(), "u1", models.ByID).Return(nil, errors.New("store down"))

	res := s.do(s.asOwner(), `{ user(id: "u1") { id } }`)
	s.Equal([]string{"Unable to verify user"}, messages(res.Errors))
	s.Equal(codeUnauthenticated, res.Errors[0].Extensions["code"])
	s.Equal(float64(1), s.decisions("User.id", DecisionVerificationFailed))
}

func (s *GuardSuite) TestDelegatesToNext() {
	s.finder.EXPECT().Find(gomock.Any(), "u1", models.ByID).Return(s.owner, nil)

	res := s.do(s.asOwner(), `{ user(email: "a@x.com") { nickname } }`)
	s.Require().Empty(res.Errors)
	s.Equal("nick", lookup(res.Data, "user", "nickname"))
	s.Equal(float64(1), s.decisions("User.nickname", DecisionResolved))
}

func (s *GuardSuite) TestOneMatchingKeyIsEnough() {
	s.finder.EXPECT().Find(gomock.Any(), "u1", models.ByID).Return(s.owner, nil).Times(2)

	res := s.do(s.asOwner(), `{ user(id: "u1", email: "b@x.com") { id email } }`)
	s.Require().Empty(res.Errors)
	s.Equal("u1", lookup(res.Data, "user", "id"))
	s.Equal("a@x.com", lookup(res.Data, "user", "email"))
}

func (s *GuardSuite) TestNoMatchingKeyIsNotAuthorized() {
	s.finder.EXPECT().Find(gomock.Any(), "u1", models.ByID).Return(s.owner, nil)

	res := s.do(s.asOwner(), `{ user(id: "u2", email: "b@x.com") { id } }`)
	s.Equal([]string{"Not Authorized"}, messages(res.Errors))
	s.Equal(float64(1), s.decisions("User.id", DecisionNotAuthorized))
}

func (s *GuardSuite) TestParentMustBeThePrincipalsRecord() {
	s.served = &models.User{ID: "u2", Email: "b@x.com"}
	s.finder.EXPECT().Find(gomock.Any(), "u1", models.ByID).Return(s.owner, nil)

	res := s.do(s.asOwner(), `{ user(id: "u1") { email } }`)
	s.Equal([]string{"Not Authorized"}, messages(res.Errors))
	s.Nil(lookup(res.Data, "user", "email"))
}

func (s *GuardSuite) TestListIndicesAreSkipped() {
	s.finder.EXPECT().Find(gomock.Any(), "u1", models.ByID).Return(s.owner, nil).Times(2)

	res := s.do(s.asOwner(), `{ users(email: "a@x.com") { id email } }`)
	s.Require().Empty(res.Errors)
	list, ok := lookup(res.Data, "users").([]interface{})
	s.Require().True(ok)
	s.Require().Len(list, 1)
	s.Equal("u1", lookup(list[0], "id"))
	s.Equal("a@x.com", lookup(list[0], "email"))
}

func TestFieldTable(t *testing.T) {
	user := &models.User{ID: "u1", Email: "a@x.com", PasswordDigest: "digest"}

	assert.Equal(t, "u1", userFields.Read(user, "id"))
	assert.Equal(t, "a@x.com", userFields.Read(user, "EMAIL"))
	assert.Nil(t, userFields.Read(user, "passwordDigest"))
	assert.Nil(t, userFields.Read("not a user", "id"))
	assert.Nil(t, userFields.Read((*models.User)(nil), "id"))

	type pair struct{ Left, Right string }
	table := Fields(map[string]func(pair) any{
		"Left": func(p pair) any { return p.Left },
	})
	require.Len(t, table, 1)
	assert.Equal(t, "l", table.Read(pair{Left: "l"}, "left"))
	assert.Nil(t, table.Read(pair{Right: "r"}, "right"))
}
