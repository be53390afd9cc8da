package graph

import (
	"context"

	"github.com/graphql-go/graphql"

	"printsettings/internal/user/models"
	"printsettings/pkg/requestcontext"
)

// UserService is the credential store surface the graph needs.
type UserService interface {
	Finder
	Create(ctx context.Context, candidate models.Candidate) (*models.User, error)
	UpdateCredentials(ctx context.Context, id string, candidate models.Candidate) (bool, error)
	Remove(ctx context.Context, id string) bool
}

// AuthService issues, rotates and revokes sessions.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) (bool, error)
}

// RefreshTokenSource reads the refresh token the client presented with the
// current request, "" when there is none.
type RefreshTokenSource interface {
	RefreshToken(ctx context.Context) string
}

type resolver struct {
	users   UserService
	auth    AuthService
	cookies RefreshTokenSource
}

// NewSchema builds the user/auth schema. User.id and User.email are wrapped by
// guard; everything else resolves directly.
func NewSchema(users UserService, auth AuthService, cookies RefreshTokenSource, guard *Guard) (graphql.Schema, error) {
	r := &resolver{users: users, auth: auth, cookies: cookies}

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.String,
				Resolve: guard.Wrap(nil, userFields),
			},
			"email": &graphql.Field{
				Type:    graphql.String,
				Resolve: guard.Wrap(nil, userFields),
			},
		},
	})

	authType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Auth",
		Fields: graphql.Fields{
			"authenticated": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, _ := p.Source.(*models.AuthResult)
					return res != nil && res.Authenticated, nil
				},
			},
			"accessToken": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, ok := p.Source.(*models.AuthResult)
					if !ok || res == nil {
						return nil, nil
					}
					return res.AccessToken, nil
				},
			},
			"user": &graphql.Field{
				Type: userType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					res, ok := p.Source.(*models.AuthResult)
					if !ok || res == nil || res.User == nil {
						return nil, nil
					}
					return res.User.Public(), nil
				},
			},
		},
	})

	credentials := graphql.FieldConfigArgument{
		"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"user": &graphql.Field{
				Type: userType,
				Args: graphql.FieldConfigArgument{
					"id":    &graphql.ArgumentConfig{Type: graphql.String},
					"email": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.user,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addUser": &graphql.Field{
				Type:    userType,
				Args:    credentials,
				Resolve: r.addUser,
			},
			"login": &graphql.Field{
				Type:    authType,
				Args:    credentials,
				Resolve: r.login,
			},
			"refreshToken": &graphql.Field{
				Type:    authType,
				Resolve: r.refreshToken,
			},
			"logout": &graphql.Field{
				Type:    graphql.Boolean,
				Resolve: r.logout,
			},
			"updateUser": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.updateUser,
			},
			"removeUser": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: r.removeUser,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

func (r *resolver) user(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	email, _ := p.Args["email"].(string)

	var (
		user *models.User
		err  error
	)
	switch {
	case id != "":
		user, err = r.users.Find(p.Context, id, models.ByID)
	case email != "":
		user, err = r.users.Find(p.Context, email, models.ByEmail)
	default:
		return nil, errMissingUserKey
	}
	if err != nil || user == nil {
		return nil, nil
	}
	return user.Public(), nil
}

func (r *resolver) addUser(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	user, err := r.users.Create(p.Context, models.Candidate{Email: email, Password: password})
	if err != nil {
		return nil, toFieldError(err)
	}
	return user.Public(), nil
}

func (r *resolver) login(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	result, err := r.auth.Login(p.Context, email, password)
	if err != nil {
		return nil, toFieldError(err)
	}
	return result, nil
}

func (r *resolver) refreshToken(p graphql.ResolveParams) (interface{}, error) {
	result, err := r.auth.Refresh(p.Context, r.presentedRefreshToken(p.Context))
	if err != nil {
		return nil, toFieldError(err)
	}
	return result, nil
}

func (r *resolver) logout(p graphql.ResolveParams) (interface{}, error) {
	ok, err := r.auth.Logout(p.Context, r.presentedRefreshToken(p.Context))
	if err != nil {
		return nil, toFieldError(err)
	}
	return ok, nil
}

func (r *resolver) updateUser(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	if err := requireSelf(p.Context, id); err != nil {
		return nil, err
	}
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	ok, err := r.users.UpdateCredentials(p.Context, id, models.Candidate{Email: email, Password: password})
	if err != nil {
		return nil, toFieldError(err)
	}
	return ok, nil
}

func (r *resolver) removeUser(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	if err := requireSelf(p.Context, id); err != nil {
		return nil, err
	}
	return r.users.Remove(p.Context, id), nil
}

func (r *resolver) presentedRefreshToken(ctx context.Context) string {
	if r.cookies == nil {
		return ""
	}
	return r.cookies.RefreshToken(ctx)
}

// requireSelf allows account mutations only on the caller's own record.
func requireSelf(ctx context.Context, id string) error {
	principal, ok := requestcontext.PrincipalFrom(ctx)
	if !ok {
		return errNotAuthenticated
	}
	if principal.UserID != id {
		return errNotAuthorized
	}
	return nil
}
