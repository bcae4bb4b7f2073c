package ledger

import (
	"community-bot/metrics"
	"community-bot/model"
	"community-bot/punish"
	"community-bot/rulestore"
	"community-bot/utils/testutil"
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type LedgerSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *testutil.Clock
	rules   *rulestore.Store
	metrics *metrics.Metrics
	ledger  *Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = testutil.NewClock()
	s.rules = s.seededStore(testutil.OpenDB(s.T()))
	s.metrics = metrics.New()
	s.ledger = s.newLedger(false)
}

func (s *LedgerSuite) seededStore(db *sqlx.DB) *rulestore.Store {
	rules := rulestore.New(db).WithClock(s.clock.Now)
	_, err := rules.UpsertCategory(s.ctx, model.Category{Name: "General Rules", Prefix: "GR", Subcategories: []string{"Behavior"}})
	s.Require().NoError(err)

	hour := int64(3600)
	_, err = rules.UpsertRule(s.ctx, model.Rule{
		ID:          "noise-complaint",
		Category:    "General Rules",
		Subcategory: "Behavior",
		Title:       "Noise complaints",
		Body:        "Keep voice channels free of loud noise.",
		Keywords:    []string{"noise", "voice"},
		Tiers: []model.Tier{
			{Severity: 1, Action: model.ActionWarning},
			{Severity: 2, Action: model.ActionTimeout, DurationSeconds: &hour},
			{Severity: 3, Action: model.ActionBan},
		},
	}, "admin")
	s.Require().NoError(err)
	return rules
}

func (s *LedgerSuite) newLedger(expiredCounts bool) *Ledger {
	return New(s.rules, punish.NewResolver(s.rules), Options{
		ExpiredCountsTowardEscalation: expiredCounts,
		Now:                           s.clock.Now,
		Metrics:                       s.metrics,
	})
}

func (s *LedgerSuite) record(member string) *model.ViolationRecord {
	rec, err := s.ledger.RecordViolation(s.ctx, Violation{MemberID: member, RuleID: "noise-complaint", StaffID: "mod-1"})
	s.Require().NoError(err)
	return rec
}

func (s *LedgerSuite) TestEscalationScenario() {
	var actions []model.ActionKind
	for i := 0; i < 4; i++ {
		rec := s.record("M")
		s.Equal(i+1, rec.Ordinal)
		actions = append(actions, rec.Action)
	}
	s.Equal([]model.ActionKind{model.ActionWarning, model.ActionTimeout, model.ActionBan, model.ActionBan}, actions)

	count, err := s.ledger.ActiveOffenseCount(s.ctx, "M", "noise-complaint")
	s.Require().NoError(err)
	s.Equal(4, count)
	s.Equal(2.0, promtest.ToFloat64(s.metrics.ViolationsRecorded.WithLabelValues("ban")))
}

func (s *LedgerSuite) TestNextTierPreviewsEscalation() {
	ordinal, tier, err := s.ledger.NextTier(s.ctx, "M", "noise-complaint")
	s.Require().NoError(err)
	s.Equal(1, ordinal)
	s.Equal(model.ActionWarning, tier.Action)

	s.record("M")
	ordinal, tier, err = s.ledger.NextTier(s.ctx, "M", "noise-complaint")
	s.Require().NoError(err)
	s.Equal(2, ordinal)
	s.Equal(model.ActionTimeout, tier.Action)

	rec := s.record("M")
	s.Equal(ordinal, rec.Ordinal)

	_, _, err = s.ledger.NextTier(s.ctx, "M", "missing")
	s.Require().ErrorIs(err, model.ErrNotFound)
}

func (s *LedgerSuite) TestRecordSnapshotsTierAndExpiry() {
	warn := s.record("M")
	timeout := s.record("M")
	ban := s.record("M")

	expiry, ok := warn.Expiry()
	s.Require().True(ok)
	s.Equal(s.clock.T.Add(DefaultWarningExpiry).Unix(), expiry.Unix())

	expiry, ok = timeout.Expiry()
	s.Require().True(ok)
	s.Equal(s.clock.T.Add(time.Hour).Unix(), expiry.Unix())
	s.Equal(int64(3600), *timeout.DurationSeconds)

	_, ok = ban.Expiry()
	s.False(ok)

	got, err := s.ledger.Get(s.ctx, timeout.ID)
	s.Require().NoError(err)
	s.Equal(*timeout, *got)
}

func (s *LedgerSuite) TestConcurrentRecordsGetDistinctOrdinals() {
	const workers, perWorker = 10, 5

	// The in-memory database runs on a single connection, which would
	// serialize the transactions by itself. A file-backed database with
	// several connections leaves ordering to the ledger's per-pair lock.
	rules := s.seededStore(testutil.OpenFileDB(s.T(), 4))
	l := New(rules, punish.NewResolver(rules), Options{Now: s.clock.Now})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ordinals []int
		errs     []error
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				rec, err := l.RecordViolation(s.ctx, Violation{MemberID: "M", RuleID: "noise-complaint", StaffID: "mod-1"})
				mu.Lock()
				if err != nil {
					errs = append(errs, err)
				} else {
					ordinals = append(ordinals, rec.Ordinal)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Require().Empty(errs)
	sort.Ints(ordinals)
	want := make([]int, workers*perWorker)
	for i := range want {
		want[i] = i + 1
	}
	s.Equal(want, ordinals)
}

func (s *LedgerSuite) TestRecordRejectsTierRefusedByGuard() {
	s.record("M")
	s.record("M")

	noBans := func(t model.Tier) error {
		if t.Action == model.ActionBan {
			return model.Denied("helpers cannot ban")
		}
		return nil
	}
	_, err := s.ledger.RecordViolation(s.ctx, Violation{MemberID: "M", RuleID: "noise-complaint", StaffID: "helper-1", Allow: noBans})
	s.ErrorIs(err, model.ErrNotPermitted)

	n, err := s.ledger.ActiveOffenseCount(s.ctx, "M", "noise-complaint")
	s.Require().NoError(err)
	s.Equal(2, n)

	rec, err := s.ledger.RecordViolation(s.ctx, Violation{MemberID: "other", RuleID: "noise-complaint", StaffID: "helper-1", Allow: noBans})
	s.Require().NoError(err)
	s.Equal(model.ActionWarning, rec.Action)
}

func (s *LedgerSuite) TestRecordOnClosedDatabaseIsStorageError() {
	s.Require().NoError(s.rules.DB().Close())

	_, err := s.ledger.RecordViolation(s.ctx, Violation{MemberID: "M", RuleID: "noise-complaint", StaffID: "mod-1"})
	s.ErrorIs(err, model.ErrStorage)
}

func (s *LedgerSuite) TestExpireDueRecordsIsIdempotent() {
	s.record("M")
	s.record("M")
	s.record("other")

	s.clock.Advance(2 * time.Hour)
	report, err := s.ledger.ExpireDueRecords(s.ctx, s.clock.T)
	s.Require().NoError(err)
	s.Equal(1, report.Expired)
	s.Empty(report.Failures)

	again, err := s.ledger.ExpireDueRecords(s.ctx, s.clock.T)
	s.Require().NoError(err)
	s.Zero(again.Expired)

	s.clock.Advance(DefaultWarningExpiry)
	report, err = s.ledger.ExpireDueRecords(s.ctx, s.clock.T)
	s.Require().NoError(err)
	s.Equal(2, report.Expired)
	s.Equal(3.0, promtest.ToFloat64(s.metrics.RecordsExpired))

	count, err := s.ledger.ActiveOffenseCount(s.ctx, "M", "noise-complaint")
	s.Require().NoError(err)
	s.Zero(count)

	recs, err := s.ledger.ListForMember(s.ctx, "M")
	s.Require().NoError(err)
	s.Len(recs, 2)
	for _, r := range recs {
		s.True(r.Expired)
		s.NotNil(r.ExpiredAt)
	}
}

func (s *LedgerSuite) TestExpiredRecordsAndEscalationPolicy() {
	s.record("M")
	s.clock.Advance(DefaultWarningExpiry + time.Second)

	s.Run("expired records do not count by default", func() {
		rec := s.record("M")
		s.Equal(1, rec.Ordinal)
		s.Equal(model.ActionWarning, rec.Action)
	})

	s.Run("expired records count when the policy says so", func() {
		s.ledger = s.newLedger(true)
		rec := s.record("M")
		s.Equal(3, rec.Ordinal)
		s.Equal(model.ActionBan, rec.Action)
	})
}

func (s *LedgerSuite) TestExpireReportsFailuresAndContinues() {
	first := s.record("A")
	s.record("B")

	trigger := fmt.Sprintf(`CREATE TRIGGER fail_expiry BEFORE UPDATE ON violations WHEN OLD.id = '%s'
		BEGIN SELECT RAISE(ABORT, 'record locked'); END`, first.ID)
	_, err := s.rules.DB().Exec(trigger)
	s.Require().NoError(err)

	s.clock.Advance(DefaultWarningExpiry)
	report, err := s.ledger.ExpireDueRecords(s.ctx, s.clock.T)
	s.Require().NoError(err)
	s.Equal(1, report.Expired)
	s.Require().Len(report.Failures, 1)
	s.Equal(first.ID, report.Failures[0].RecordID)
	s.ErrorIs(report.Failures[0].Err, model.ErrStorage)
}

func (s *LedgerSuite) TestDeactivatedRuleRejectsNewViolations() {
	before := []*model.ViolationRecord{s.record("M"), s.record("M")}
	s.Require().NoError(s.rules.DeactivateRule(s.ctx, "noise-complaint", "admin"))

	_, err := s.ledger.RecordViolation(s.ctx, Violation{MemberID: "M", RuleID: "noise-complaint", StaffID: "mod-1"})
	s.Require().ErrorIs(err, model.ErrRuleInactive)

	recs, err := s.ledger.ListForRule(s.ctx, "noise-complaint")
	s.Require().NoError(err)
	s.Require().Len(recs, 2)
	s.Equal(*before[1], recs[0])
	s.Equal(*before[0], recs[1])
}

func (s *LedgerSuite) TestRecordViolationErrors() {
	_, err := s.ledger.RecordViolation(s.ctx, Violation{MemberID: "M", RuleID: "missing", StaffID: "mod-1"})
	s.ErrorIs(err, model.ErrNotFound)

	_, err = s.ledger.RecordViolation(s.ctx, Violation{MemberID: " ", RuleID: "noise-complaint", StaffID: "mod-1"})
	s.ErrorIs(err, model.ErrValidation)

	_, err = s.ledger.Get(s.ctx, "nope")
	s.ErrorIs(err, model.ErrNotFound)
}

func (s *LedgerSuite) TestStats() {
	s.record("A")
	s.record("B")
	_, err := s.ledger.RecordViolation(s.ctx, Violation{MemberID: "A", RuleID: "noise-complaint", StaffID: "mod-2"})
	s.Require().NoError(err)

	stats, err := s.ledger.Stats(s.ctx, s.clock.T.Add(-time.Hour))
	s.Require().NoError(err)
	s.Equal(3, stats.Total)
	s.Equal(3, stats.Active)
	s.Equal(map[string]int{"mod-1": 2, "mod-2": 1}, stats.ByStaff)

	stats, err = s.ledger.Stats(s.ctx, s.clock.T.Add(time.Hour))
	s.Require().NoError(err)
	s.Zero(stats.Total)
}
