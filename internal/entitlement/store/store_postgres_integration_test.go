//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"imsse/internal/entitlement/ports"
	"imsse/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	contractSuite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgres(s.pg.Pool)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.newStore = func() ports.Store {
		_, err := s.pg.Pool.Exec(context.Background(), `TRUNCATE entitlement_records, slot_bindings`)
		s.Require().NoError(err)
		return s.store
	}
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}
