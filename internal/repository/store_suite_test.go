package repository_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/spec-kit/user-directory/internal/domain"
	"github.com/spec-kit/user-directory/internal/repository"
)

// userStoreSuite runs the UserStore contract against any backend.
// Embedding suites set store and reset state in SetupTest.
type userStoreSuite struct {
	suite.Suite
	ctx   context.Context
	store repository.UserStore
}

func (s *userStoreSuite) TestInsertThenSelect() {
	id := uuid.New()

	count, err := s.store.Insert(s.ctx, id, anna(id))
	s.Require().NoError(err)
	s.Equal(1, count)

	got, found, err := s.store.SelectByID(s.ctx, id)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(anna(id), got)
}

func (s *userStoreSuite) TestInsertDuplicateIsNotAcknowledged() {
	id := uuid.New()
	_, err := s.store.Insert(s.ctx, id, anna(id))
	s.Require().NoError(err)

	count, err := s.store.Insert(s.ctx, id, anna(id))
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *userStoreSuite) TestSelectAllKeepsInsertionOrder() {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		_, err := s.store.Insert(s.ctx, id, anna(id))
		s.Require().NoError(err)
	}

	users, err := s.store.SelectAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, len(ids))
	for i, id := range ids {
		s.Equal(id, users[i].ID)
	}
}

func (s *userStoreSuite) TestSelectAllEmpty() {
	users, err := s.store.SelectAll(s.ctx)
	s.Require().NoError(err)
	s.NotNil(users)
	s.Empty(users)
}

func (s *userStoreSuite) TestSelectMissing() {
	_, found, err := s.store.SelectByID(s.ctx, uuid.New())
	s.Require().NoError(err)
	s.False(found)
}

func (s *userStoreSuite) TestUpdate() {
	id := uuid.New()
	_, err := s.store.Insert(s.ctx, id, anna(id))
	s.Require().NoError(err)

	replacement := domain.User{ID: id, FirstName: "Joe", LastName: "Jones", Gender: domain.GenderMale, Age: 22, Email: "joe.jones@gmail.com"}
	count, err := s.store.Update(s.ctx, replacement)
	s.Require().NoError(err)
	s.Equal(1, count)

	got, _, err := s.store.SelectByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(replacement, got)

	count, err = s.store.Update(s.ctx, anna(uuid.New()))
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *userStoreSuite) TestDelete() {
	id := uuid.New()
	_, err := s.store.Insert(s.ctx, id, anna(id))
	s.Require().NoError(err)

	count, err := s.store.DeleteByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(1, count)

	users, err := s.store.SelectAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(users)

	count, err = s.store.DeleteByID(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(0, count)
}
