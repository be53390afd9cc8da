package httptransport

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printsettings/pkg/testutil"
)

type scenarioUser struct {
	ID    *string `json:"id"`
	Email *string `json:"email"`
}

type scenarioAuth struct {
	AccessToken string       `json:"accessToken"`
	User        scenarioUser `json:"user"`
}

func TestOwnershipScenario(t *testing.T) {
	rs := new(RouterSuite)
	rs.SetT(t)
	rs.SetupTest()
	router := rs.router

	signUp := `mutation($e: String!, $p: String!) { addUser(email: $e, password: $p) { id email } }`
	login := `mutation($e: String!, $p: String!) { login(email: $e, password: $p) { accessToken user { id } } }`
	lookupA := `{ user(email: "a@x.com") { id email } }`

	var idA, tokenA, tokenB string

	testutil.Given(t, "accounts a@x.com and b@x.com", func(t *testing.T) {
		resp := testutil.DecodeGraphQL(t, testutil.DoRequest(router, testutil.NewGraphQLRequest(t, signUp, map[string]any{"e": "a@x.com", "p": "pw1"})))
		testutil.AssertFieldErrors(t, resp)
		created := testutil.Field[scenarioUser](t, resp, "addUser")
		require.NotNil(t, created.ID)
		idA = *created.ID

		resp = testutil.DecodeGraphQL(t, testutil.DoRequest(router, testutil.NewGraphQLRequest(t, signUp, map[string]any{"e": "b@x.com", "p": "pw2"})))
		testutil.AssertFieldErrors(t, resp)
	})

	testutil.When(t, "both log in", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewGraphQLRequest(t, login, map[string]any{"e": "a@x.com", "p": "pw1"}))
		resp := testutil.DecodeGraphQL(t, rr)
		testutil.AssertFieldErrors(t, resp)
		tokenA = testutil.Field[scenarioAuth](t, resp, "login").AccessToken
		assert.NotNil(t, testutil.Cookie(rr, RefreshTokenCookie))

		resp = testutil.DecodeGraphQL(t, testutil.DoRequest(router, testutil.NewGraphQLRequest(t, login, map[string]any{"e": "b@x.com", "p": "pw2"})))
		tokenB = testutil.Field[scenarioAuth](t, resp, "login").AccessToken
	})

	testutil.Then(t, "A sees its own id and email", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewGraphQLRequest(t, lookupA, nil), tokenA)
		resp := testutil.DecodeGraphQL(t, testutil.DoRequest(router, req))
		testutil.AssertFieldErrors(t, resp)
		user := testutil.Field[scenarioUser](t, resp, "user")
		require.NotNil(t, user.ID)
		assert.Equal(t, idA, *user.ID)
		assert.Equal(t, "a@x.com", *user.Email)
	})

	testutil.And(t, "B gets null fields with authorization errors", func(t *testing.T) {
		req := testutil.WithBearer(testutil.NewGraphQLRequest(t, lookupA, nil), tokenB)
		resp := testutil.DecodeGraphQL(t, testutil.DoRequest(router, req))
		testutil.AssertFieldErrors(t, resp, "Not Authorized", "Not Authorized")
		assert.Equal(t, "FORBIDDEN", resp.Errors[0].Extensions["code"])
		user := testutil.Field[scenarioUser](t, resp, "user")
		assert.Nil(t, user.ID)
		assert.Nil(t, user.Email)
	})

	testutil.And(t, "an anonymous caller is not authenticated", func(t *testing.T) {
		resp := testutil.DecodeGraphQL(t, testutil.DoRequest(router, testutil.NewGraphQLRequest(t, lookupA, nil)))
		testutil.AssertFieldErrors(t, resp, "Not Authenticated", "Not Authenticated")
	})

	testutil.And(t, "a malformed body is a bad request", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/graphql", "not an object")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "bad_request")
	})
}
