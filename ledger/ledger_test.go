package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/milk9111/robotmasters/config"
)

type LedgerTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	ledger *Ledger
	ctx    context.Context
}

func (s *LedgerTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s.ledger = New(s.client, "test")
	s.ledger.now = func() time.Time { return time.Unix(1700000000, 0) }
	s.ctx = context.Background()
}

func (s *LedgerTestSuite) TearDownTest() {
	s.Require().NoError(s.client.Close())
	s.mr.Close()
}

func (s *LedgerTestSuite) TestRecordDefeat() {
	improved, err := s.ledger.RecordDefeat(s.ctx, Defeat{Boss: "reactor_man", Seconds: 42.5, PlayerHealth: 12})
	s.Require().NoError(err)
	s.True(improved)

	improved, err = s.ledger.RecordDefeat(s.ctx, Defeat{Boss: "reactor_man", Seconds: 50, PlayerHealth: 3})
	s.Require().NoError(err)
	s.False(improved)

	rec, err := s.ledger.Get(s.ctx, "reactor_man")
	s.Require().NoError(err)
	s.Equal(int64(2), rec.Defeats)
	s.Equal(42.5, rec.BestSeconds)
	s.Equal(3, rec.PlayerHealth)
	s.Equal(int64(1700000000), rec.LastDefeat.Unix())
}

func (s *LedgerTestSuite) TestDefeatedAndFastest() {
	for _, d := range []Defeat{
		{Boss: "rodent_man", Seconds: 30},
		{Boss: "inferno_man", Seconds: 20},
		{Boss: "reactor_man", Seconds: 25},
		{Boss: "inferno_man", Seconds: 18},
	} {
		_, err := s.ledger.RecordDefeat(s.ctx, d)
		s.Require().NoError(err)
	}

	names, err := s.ledger.Defeated(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"inferno_man", "reactor_man", "rodent_man"}, names)

	fastest, err := s.ledger.Fastest(s.ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(fastest, 2)
	s.Equal("inferno_man", fastest[0].Boss)
	s.Equal(18.0, fastest[0].BestSeconds)
	s.Equal("reactor_man", fastest[1].Boss)
}

func (s *LedgerTestSuite) TestUnknownBossAndReset() {
	rec, err := s.ledger.Get(s.ctx, "guts_tank")
	s.Require().NoError(err)
	s.Zero(rec.Defeats)
	s.True(rec.LastDefeat.IsZero())

	_, err = s.ledger.RecordDefeat(s.ctx, Defeat{Boss: "guts_tank", Seconds: 10})
	s.Require().NoError(err)
	s.Require().NoError(s.ledger.Reset(s.ctx, "guts_tank"))

	names, err := s.ledger.Defeated(s.ctx)
	s.Require().NoError(err)
	s.Empty(names)
	s.False(s.mr.Exists("test:boss:guts_tank"))

	_, err = s.ledger.RecordDefeat(s.ctx, Defeat{})
	s.ErrorIs(err, ErrBossRequired)
}

func (s *LedgerTestSuite) TestDial() {
	l, client, err := Dial(s.ctx, config.LedgerConfig{Addr: s.mr.Addr(), Prefix: "dial"})
	s.Require().NoError(err)
	defer client.Close()
	_, err = l.RecordDefeat(s.ctx, Defeat{Boss: "rodent_man"})
	s.Require().NoError(err)
	s.True(s.mr.Exists("dial:boss:rodent_man"))

	_, _, err = Dial(s.ctx, config.LedgerConfig{})
	s.Error(err)
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
