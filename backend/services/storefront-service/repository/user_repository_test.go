package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UserRepositoryTestSuite runs the user lookups against a sqlmock connection.
type UserRepositoryTestSuite struct {
	suite.Suite
	conn *sql.DB
	mock sqlmock.Sqlmock
	repo repository.UserRepository
}

func (s *UserRepositoryTestSuite) SetupTest() {
	conn, mock, err := sqlmock.New()
	s.Require().NoError(err)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	s.Require().NoError(err)

	s.conn, s.mock = conn, mock
	s.repo = repository.NewGormUserRepository(db)
}

func (s *UserRepositoryTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.conn.Close()
}

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositoryTestSuite))
}

func (s *UserRepositoryTestSuite) userRows(id uuid.UUID, email string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "first_name", "last_name", "role", "bonus", "created_at", "updated_at"}).
		AddRow(id, email, "hash", "Ada", "Lovelace", "user", 250, now, now)
}

func (s *UserRepositoryTestSuite) TestFindByEmail() {
	id := uuid.New()
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnRows(s.userRows(id, "ada@example.com"))

	user, err := s.repo.FindByEmail(context.Background(), "ada@example.com")
	s.NoError(err)
	s.Require().NotNil(user)
	s.Equal(id, user.ID)
	s.Equal(int64(250), user.Bonus)
	s.Equal("Ada Lovelace", user.FullName())
}

func (s *UserRepositoryTestSuite) TestFindByEmail_NotFound() {
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WillReturnError(gorm.ErrRecordNotFound)

	user, err := s.repo.FindByEmail(context.Background(), "nobody@example.com")
	s.Nil(user)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *UserRepositoryTestSuite) TestFindByID() {
	id := uuid.New()
	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE id = $1`)).
		WillReturnRows(s.userRows(id, "ada@example.com"))

	user, err := s.repo.FindByID(context.Background(), id)
	s.NoError(err)
	s.Equal("ada@example.com", user.Email)
}
