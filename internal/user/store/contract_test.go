package store

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/suite"

	"printsettings/internal/user/models"
	"printsettings/pkg/platform/sentinel"
)

type userStore interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Replace(ctx context.Context, user *models.User) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// contractSuite holds the behavior every backend must share. Backend suites embed
// it and set store in SetupTest.
type contractSuite struct {
	suite.Suite
	store userStore
	// foreignID is an id of valid shape for the backend that was never issued.
	foreignID string
}

func (s *contractSuite) insert(email string) *models.User {
	user, err := models.NewUser(email, "SomePass4NAV!")
	s.Require().NoError(err)
	stored, err := s.store.Insert(context.Background(), user)
	s.Require().NoError(err)
	return stored
}

func (s *contractSuite) TestInsertAssignsID() {
	candidate := &models.User{ID: "123", Email: "test6@test.com", PasswordDigest: "digest"}
	stored, err := s.store.Insert(context.Background(), candidate)
	s.Require().NoError(err)
	s.NotEmpty(stored.ID)
	s.NotEqual("123", stored.ID)
	s.Equal("digest", stored.PasswordDigest)
}

func (s *contractSuite) TestInsertRejectsDuplicateEmail() {
	s.insert("test@test.com")
	_, err := s.store.Insert(context.Background(), &models.User{Email: "test@test.com", PasswordDigest: "x"})
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	n, err := s.store.Count(context.Background())
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}

func (s *contractSuite) TestLookupBehavior() {
	ctx := context.Background()
	user := s.insert("lookup@test.com")

	s.Run("returns user by ID", func() {
		found, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("returns user by email", func() {
		found, err := s.store.FindByEmail(ctx, user.Email)
		s.Require().NoError(err)
		s.Equal(user, found)
	})

	s.Run("email lookup is exact match", func() {
		_, err := s.store.FindByEmail(ctx, "LOOKUP@test.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound for unknown or malformed ids", func() {
		for _, id := range []string{"", "123", s.foreignID} {
			_, err := s.store.FindByID(ctx, id)
			s.Require().ErrorIs(err, sentinel.ErrNotFound, "id %q", id)
		}
	})
}

func (s *contractSuite) TestReplace() {
	ctx := context.Background()
	user := s.insert("replace@test.com")

	s.Run("reports modification when content changes", func() {
		digest, err := models.HashPassword("NewPassword123!")
		s.Require().NoError(err)
		updated := *user
		updated.PasswordDigest = digest

		modified, err := s.store.Replace(ctx, &updated)
		s.Require().NoError(err)
		s.True(modified)

		found, err := s.store.FindByID(ctx, user.ID)
		s.Require().NoError(err)
		s.True(found.VerifyPassword("NewPassword123!"))
		*user = *found
	})

	s.Run("identical content is not a modification", func() {
		modified, err := s.store.Replace(ctx, user)
		s.Require().NoError(err)
		s.False(modified)
	})

	s.Run("unknown id is not a modification", func() {
		for _, id := range []string{"123", s.foreignID} {
			ghost := *user
			ghost.ID = id
			modified, err := s.store.Replace(ctx, &ghost)
			s.Require().NoError(err)
			s.False(modified)
		}
	})

	s.Run("taking another user's email conflicts", func() {
		other := s.insert("other@test.com")
		clash := *user
		clash.Email = other.Email
		_, err := s.store.Replace(ctx, &clash)
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})
}

func (s *contractSuite) TestDelete() {
	ctx := context.Background()
	user := s.insert("delete.me@test.com")

	removed, err := s.store.Delete(ctx, user.ID)
	s.Require().NoError(err)
	s.True(removed)

	_, err = s.store.FindByID(ctx, user.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	removed, err = s.store.Delete(ctx, user.ID)
	s.Require().NoError(err)
	s.False(removed)

	removed, err = s.store.Delete(ctx, "123")
	s.Require().NoError(err)
	s.False(removed)

	// the email is free again once its owner is gone
	s.insert("delete.me@test.com")
}

func (s *contractSuite) TestConcurrentInsertSameEmail() {
	const goroutines = 20
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		conflicts atomic.Int32
	)
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Insert(context.Background(), &models.User{Email: "race@test.com", PasswordDigest: "x"})
			switch {
			case err == nil:
				successes.Add(1)
			case isConflict(err):
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}
