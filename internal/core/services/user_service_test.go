package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SscSPs/valutatrade_hub/internal/apperrors"
	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
	"github.com/SscSPs/valutatrade_hub/internal/core/services"
	"github.com/SscSPs/valutatrade_hub/internal/utils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UserServiceTestSuite struct {
	suite.Suite
	mockUserRepo      *MockUserRepository
	mockPortfolioRepo *MockPortfolioRepository
	service           *services.UserService
	ctx               context.Context
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockUserRepo = new(MockUserRepository)
	suite.mockPortfolioRepo = new(MockPortfolioRepository)
	suite.service = services.NewUserService(suite.mockUserRepo, suite.mockPortfolioRepo)
	suite.ctx = context.Background()
}

func (suite *UserServiceTestSuite) TestRegister_Success() {
	suite.mockUserRepo.On("FindUserByUsername", suite.ctx, "alice").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockUserRepo.On("SaveUser", suite.ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Username == "alice" && u.UserID != "" && u.PasswordHash != "1234" && utils.CheckPasswordHash("1234", u.PasswordHash)
	})).Return(nil).Once()
	suite.mockPortfolioRepo.On("SavePortfolio", suite.ctx, mock.MatchedBy(func(p *domain.Portfolio) bool {
		return p.UserID != "" && len(p.Wallets) == 0
	})).Return(nil).Once()

	user, err := suite.service.Register(suite.ctx, "  alice ", "1234")

	suite.Require().NoError(err)
	suite.Equal("alice", user.Username)
	suite.NotEmpty(user.UserID)
	suite.False(user.RegisteredAt.IsZero())
	suite.mockUserRepo.AssertExpectations(suite.T())
	suite.mockPortfolioRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestRegister_Validation() {
	_, err := suite.service.Register(suite.ctx, "   ", "1234")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.service.Register(suite.ctx, "bob", "123")
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestRegister_Duplicate() {
	suite.mockUserRepo.On("FindUserByUsername", suite.ctx, "alice").Return(&domain.User{UserID: "u1", Username: "alice"}, nil).Once()

	_, err := suite.service.Register(suite.ctx, "alice", "1234")

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockUserRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestRegister_RepositoryError() {
	suite.mockUserRepo.On("FindUserByUsername", suite.ctx, "alice").Return(nil, errors.New("disk full")).Once()

	_, err := suite.service.Register(suite.ctx, "alice", "1234")

	suite.Require().Error(err)
	suite.NotErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *UserServiceTestSuite) TestAuthenticate() {
	hash, err := utils.HashPassword("1234")
	suite.Require().NoError(err)
	stored := &domain.User{UserID: "u1", Username: "alice", PasswordHash: hash}
	suite.mockUserRepo.On("FindUserByUsername", suite.ctx, "alice").Return(stored, nil)
	suite.mockUserRepo.On("FindUserByUsername", suite.ctx, "ghost").Return(nil, apperrors.ErrNotFound)

	user, err := suite.service.Authenticate(suite.ctx, "alice", "1234")
	suite.Require().NoError(err)
	suite.Equal("u1", user.UserID)

	_, err = suite.service.Authenticate(suite.ctx, "alice", "wrong")
	suite.ErrorIs(err, apperrors.ErrUnauthorized)

	_, err = suite.service.Authenticate(suite.ctx, "ghost", "1234")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *UserServiceTestSuite) TestGetUserByID() {
	suite.mockUserRepo.On("FindUserByID", suite.ctx, "u1").Return(&domain.User{UserID: "u1"}, nil).Once()
	suite.mockUserRepo.On("FindUserByID", suite.ctx, "u2").Return(nil, apperrors.ErrNotFound).Once()

	user, err := suite.service.GetUserByID(suite.ctx, "u1")
	suite.Require().NoError(err)
	suite.Equal("u1", user.UserID)

	_, err = suite.service.GetUserByID(suite.ctx, "u2")
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestUserServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
