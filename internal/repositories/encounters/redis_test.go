package encounters

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/suite"

	"github.com/questforge/session-engine/internal/domain/combat"
	apperr "github.com/questforge/session-engine/internal/errors"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mock redismock.ClientMock
	repo *redisRepository
	ctx  context.Context
}

func (s *RedisRepoTestSuite) SetupTest() {
	client, mock := redismock.NewClientMock()
	s.mock = mock
	s.repo = &redisRepository{
		client: client,
		ttl:    time.Hour,
	}
	s.ctx = context.Background()
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) testEncounter() *combat.Encounter {
	return combat.NewEncounter("enc-1", "session-1")
}

func (s *RedisRepoTestSuite) TestCreate_ActiveClaimsPointer() {
	enc := s.testEncounter()
	data, err := json.Marshal(enc)
	s.Require().NoError(err)

	s.mock.ExpectTxPipeline()
	s.mock.ExpectSet("encounter:enc-1", data, time.Hour).SetVal("OK")
	s.mock.ExpectSAdd("session:session-1:encounters", "enc-1").SetVal(1)
	s.mock.ExpectSet("session:session-1:active_encounter", "enc-1", time.Hour).SetVal("OK")
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.Create(s.ctx, enc))
}

func (s *RedisRepoTestSuite) TestCreate_NilEncounter() {
	err := s.repo.Create(s.ctx, nil)
	s.True(apperr.IsInvalidArgument(err))
}

func (s *RedisRepoTestSuite) TestGet_HappyPath() {
	enc := s.testEncounter()
	data, err := json.Marshal(enc)
	s.Require().NoError(err)

	s.mock.ExpectGet("encounter:enc-1").SetVal(string(data))

	got, err := s.repo.Get(s.ctx, "enc-1")
	s.Require().NoError(err)
	s.Equal("session-1", got.SessionID)
	s.Equal(combat.EncounterStatusActive, got.Status)
}

func (s *RedisRepoTestSuite) TestGet_NotFound() {
	s.mock.ExpectGet("encounter:missing").RedisNil()

	_, err := s.repo.Get(s.ctx, "missing")
	s.True(apperr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestUpdate_CompletedReleasesPointer() {
	enc := s.testEncounter()
	enc.Complete()
	data, err := json.Marshal(enc)
	s.Require().NoError(err)

	s.mock.ExpectTxPipeline()
	s.mock.ExpectSet("encounter:enc-1", data, time.Hour).SetVal("OK")
	s.mock.ExpectDel("session:session-1:active_encounter").SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.Update(s.ctx, enc))
}

func (s *RedisRepoTestSuite) TestGetActiveBySession_NoneIsNilNil() {
	s.mock.ExpectGet("session:session-1:active_encounter").RedisNil()

	enc, err := s.repo.GetActiveBySession(s.ctx, "session-1")
	s.NoError(err)
	s.Nil(enc)
}

func (s *RedisRepoTestSuite) TestGetActiveBySession_FollowsPointer() {
	enc := s.testEncounter()
	data, err := json.Marshal(enc)
	s.Require().NoError(err)

	s.mock.ExpectGet("session:session-1:active_encounter").SetVal("enc-1")
	s.mock.ExpectGet("encounter:enc-1").SetVal(string(data))

	got, err := s.repo.GetActiveBySession(s.ctx, "session-1")
	s.Require().NoError(err)
	s.Equal("enc-1", got.ID)
}

func (s *RedisRepoTestSuite) TestGetActiveBySession_StalePointer() {
	s.mock.ExpectGet("session:session-1:active_encounter").SetVal("enc-gone")
	s.mock.ExpectGet("encounter:enc-gone").RedisNil()

	got, err := s.repo.GetActiveBySession(s.ctx, "session-1")
	s.NoError(err)
	s.Nil(got)
}

func (s *RedisRepoTestSuite) TestGetBySession_Empty() {
	s.mock.ExpectSMembers("session:empty:encounters").SetVal([]string{})

	encs, err := s.repo.GetBySession(s.ctx, "empty")
	s.Require().NoError(err)
	s.Empty(encs)
}
