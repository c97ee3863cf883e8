package enrichment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/leynos/wildside-sub003/internal/domain/ports"
	"github.com/leynos/wildside-sub003/internal/domain/ports/mocks"
	id "github.com/leynos/wildside-sub003/pkg/domain"
	"github.com/leynos/wildside-sub003/pkg/platform/circuit"
)

type testPlan struct {
	ID    uuid.UUID
	Owner string
	POIs  []ports.EnrichedPOI
}

func (p testPlan) RequestID() uuid.UUID { return p.ID }

type testMerger struct{}

func (testMerger) Merge(p testPlan, r ports.EnrichmentResult) testPlan {
	p.POIs = append(p.POIs, r.POIs...)
	return p
}

func (testMerger) Adopt(p, cached testPlan) testPlan {
	p.POIs = append([]ports.EnrichedPOI(nil), cached.POIs...)
	return p
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// instantTimer fires immediately so retries do not sleep.
type instantTimer struct{ c chan time.Time }

func (t *instantTimer) Start(time.Duration) {
	t.c = make(chan time.Time, 1)
	t.c <- time.Time{}
}
func (t *instantTimer) Stop()               {}
func (t *instantTimer) C() <-chan time.Time { return t.c }

func newInstantTimer() backoff.Timer { return &instantTimer{} }

type WorkerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	source  *mocks.MockOverpassEnrichmentSource
	repo    *mocks.MockRouteRepository[testPlan]
	cache   *mocks.MockRouteCache[testPlan]
	prov    *mocks.MockEnrichmentProvenanceRepository
	metrics *mocks.MockRouteMetrics
	clock   *fakeClock
	changes []StateChange
	cfg     Config
	worker  *Worker[testPlan]
}

func TestWorkerSuite(t *testing.T) {
	suite.Run(t, new(WorkerSuite))
}

func (s *WorkerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockOverpassEnrichmentSource(s.ctrl)
	s.repo = mocks.NewMockRouteRepository[testPlan](s.ctrl)
	s.cache = mocks.NewMockRouteCache[testPlan](s.ctrl)
	s.prov = mocks.NewMockEnrichmentProvenanceRepository(s.ctrl)
	s.metrics = mocks.NewMockRouteMetrics(s.ctrl)
	s.clock = &fakeClock{now: epoch}
	s.changes = nil
	s.cfg = testConfig()
	s.build()
}

func (s *WorkerSuite) build() {
	w, err := New[testPlan](s.source, s.repo, s.cache, s.prov, s.metrics, testMerger{}, s.cfg,
		WithClock(s.clock.Now),
		WithTimer(newInstantTimer),
		WithStateObserver(func(c StateChange) { s.changes = append(s.changes, c) }),
	)
	s.Require().NoError(err)
	s.worker = w
}

func (s *WorkerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *WorkerSuite) newJob() Job[testPlan] {
	requestID := uuid.New()
	key, err := ports.NewRouteCacheKey("route:" + requestID.String())
	s.Require().NoError(err)
	return Job[testPlan]{
		RequestID: requestID,
		Key:       key,
		Query:     ports.OverpassQuery{JobID: requestID, BBox: orb.Bound{Min: orb.Point{-3.2, 55.9}, Max: orb.Point{-3.1, 56.0}}},
		Plan:      testPlan{ID: requestID},
	}
}

func (s *WorkerSuite) expectMiss() {
	s.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(testPlan{}, false, nil)
	s.metrics.EXPECT().RecordCacheMiss(gomock.Any()).Return(nil)
}

func (s *WorkerSuite) expectProvenance() {
	s.prov.EXPECT().Persist(gomock.Any(), gomock.Any()).Return(nil)
}

func poiResult() ports.EnrichmentResult {
	return ports.EnrichmentResult{
		POIs: []ports.EnrichedPOI{{
			Element:  id.ElementID{Kind: osm.TypeNode, ID: 42},
			Location: orb.Point{-3.19, 55.95},
		}},
		TransferBytes: 512,
		SourceURL:     "https://overpass.example/api/interpreter",
	}
}

func transportErr() error {
	return ports.NewOverpassSourceError(ports.OverpassTransport, "connection reset", nil)
}

// =============================================================================
// Cache and persistence flow
// =============================================================================

func (s *WorkerSuite) TestCacheHitSkipsSource() {
	job := s.newJob()
	cached := testPlan{ID: job.RequestID, POIs: poiResult().POIs}
	s.cache.EXPECT().Get(gomock.Any(), job.Key).Return(cached, true, nil)
	s.metrics.EXPECT().RecordCacheHit(gomock.Any()).Return(nil)
	s.repo.EXPECT().Save(gomock.Any(), cached).Return(ports.NewRouteConflictError(job.RequestID))

	out, err := s.worker.Process(context.Background(), job)

	s.Require().NoError(err)
	s.True(out.FromCache)
	s.True(out.Duplicate)
	s.Equal(cached, out.Plan)
}

func (s *WorkerSuite) TestCacheHitIsSavedUnderEachRequest() {
	first := s.newJob()
	first.Plan.Owner = "alice"
	s.expectMiss()
	s.source.EXPECT().Fetch(gomock.Any(), first.Query).Return(poiResult(), nil).Times(1)
	s.expectProvenance()

	var saved []testPlan
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, p testPlan) error {
			saved = append(saved, p)
			return nil
		}).Times(2)

	var cached testPlan
	s.cache.EXPECT().Put(gomock.Any(), first.Key, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ ports.RouteCacheKey, p testPlan) error {
			cached = p
			return nil
		})

	_, err := s.worker.Process(context.Background(), first)
	s.Require().NoError(err)

	second := s.newJob()
	second.Key = first.Key
	second.Plan.Owner = "bob"
	s.cache.EXPECT().Get(gomock.Any(), first.Key).DoAndReturn(
		func(context.Context, ports.RouteCacheKey) (testPlan, bool, error) { return cached, true, nil })
	s.metrics.EXPECT().RecordCacheHit(gomock.Any()).Return(nil)

	out, err := s.worker.Process(context.Background(), second)

	s.Require().NoError(err)
	s.True(out.FromCache)
	s.False(out.Duplicate)
	s.Equal(second.RequestID, out.Plan.ID)
	s.Equal("bob", out.Plan.Owner)
	s.Equal(poiResult().POIs, out.Plan.POIs)
	s.Require().Len(saved, 2)
	s.Equal(first.RequestID, saved[0].ID)
	s.Equal("alice", saved[0].Owner)
	s.Equal(second.RequestID, saved[1].ID)
	s.Equal("bob", saved[1].Owner)
}

func (s *WorkerSuite) TestCacheHitPersistenceFailureIsReported() {
	job := s.newJob()
	cached := testPlan{ID: uuid.New(), POIs: poiResult().POIs}
	s.cache.EXPECT().Get(gomock.Any(), job.Key).Return(cached, true, nil)
	s.metrics.EXPECT().RecordCacheHit(gomock.Any()).Return(nil)
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(ports.NewRoutePersistenceConnectionError(errors.New("refused")))

	_, err := s.worker.Process(context.Background(), job)

	var ee *EnrichmentError
	s.Require().ErrorAs(err, &ee)
	s.Equal(KindPersistence, ee.Kind)
	s.True(ee.Retryable)
}

func (s *WorkerSuite) TestProvenanceRecordsSourceAndArea() {
	job := s.newJob()
	s.expectMiss()
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil)
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.prov.EXPECT().Persist(gomock.Any(), ports.EnrichmentProvenanceRecord{
		SourceURL:  "https://overpass.example/api/interpreter",
		ImportedAt: epoch.UTC(),
		BBox:       job.Query.BBox,
	}).Return(nil)
	s.cache.EXPECT().Put(gomock.Any(), job.Key, gomock.Any()).Return(nil)

	_, err := s.worker.Process(context.Background(), job)

	s.Require().NoError(err)
}

func (s *WorkerSuite) TestProvenanceFailures() {
	s.Run("connection failure is retryable", func() {
		job := s.newJob()
		s.expectMiss()
		s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil)
		s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.prov.EXPECT().Persist(gomock.Any(), gomock.Any()).
			Return(ports.NewEnrichmentProvenanceConnectionError(errors.New("refused")))

		_, err := s.worker.Process(context.Background(), job)

		var ee *EnrichmentError
		s.Require().ErrorAs(err, &ee)
		s.Equal(KindPersistence, ee.Kind)
		s.True(IsRetryable(err))
	})

	s.Run("query failure is permanent", func() {
		job := s.newJob()
		s.expectMiss()
		s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil)
		s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.prov.EXPECT().Persist(gomock.Any(), gomock.Any()).
			Return(ports.NewEnrichmentProvenanceQueryError(errors.New("syntax error")))

		_, err := s.worker.Process(context.Background(), job)

		var pe *ports.EnrichmentProvenanceError
		s.Require().ErrorAs(err, &pe)
		s.Equal(ports.EnrichmentProvenanceQuery, pe.Kind)
		s.False(IsRetryable(err))
	})
}

func (s *WorkerSuite) TestMissFetchesPersistsAndCaches() {
	job := s.newJob()
	s.expectMiss()
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil)
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.expectProvenance()
	s.cache.EXPECT().Put(gomock.Any(), job.Key, gomock.Any()).Return(nil)

	out, err := s.worker.Process(context.Background(), job)

	s.Require().NoError(err)
	s.False(out.FromCache)
	s.False(out.Duplicate)
	s.Len(out.Plan.POIs, 1)
	snap := s.worker.policy.snapshot()
	s.Equal(uint32(1), snap.CallsUsed)
	s.Equal(uint64(512), snap.BytesUsed)
	s.Equal(0, snap.InFlight)
}

func (s *WorkerSuite) TestCacheAndMetricsFailuresAreNotFatal() {
	job := s.newJob()
	s.cache.EXPECT().Get(gomock.Any(), job.Key).Return(testPlan{}, false, ports.NewRouteCacheBackendError(errors.New("redis down")))
	s.metrics.EXPECT().RecordCacheMiss(gomock.Any()).Return(ports.NewRouteMetricsExportError(errors.New("push failed")))
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil)
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.expectProvenance()
	s.cache.EXPECT().Put(gomock.Any(), job.Key, gomock.Any()).Return(ports.NewRouteCacheBackendError(errors.New("redis down")))

	_, err := s.worker.Process(context.Background(), job)

	s.NoError(err)
}

func (s *WorkerSuite) TestConflictIsTreatedAsSuccess() {
	job := s.newJob()
	s.expectMiss()
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil)
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(ports.NewRouteConflictError(job.RequestID))
	s.expectProvenance()
	s.cache.EXPECT().Put(gomock.Any(), job.Key, gomock.Any()).Return(nil)

	out, err := s.worker.Process(context.Background(), job)

	s.Require().NoError(err)
	s.True(out.Duplicate)
}

func (s *WorkerSuite) TestPersistenceFailures() {
	s.Run("connection failure is retryable", func() {
		job := s.newJob()
		s.expectMiss()
		s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil)
		s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(ports.NewRoutePersistenceConnectionError(errors.New("refused")))

		_, err := s.worker.Process(context.Background(), job)

		var ee *EnrichmentError
		s.Require().ErrorAs(err, &ee)
		s.Equal(KindPersistence, ee.Kind)
		s.True(IsRetryable(err))
	})

	s.Run("write failure is permanent", func() {
		job := s.newJob()
		s.expectMiss()
		s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil)
		s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(ports.NewRoutePersistenceWriteError(errors.New("check violation")))

		_, err := s.worker.Process(context.Background(), job)

		var ee *EnrichmentError
		s.Require().ErrorAs(err, &ee)
		s.Equal(KindPersistence, ee.Kind)
		s.False(IsRetryable(err))
	})
}

// =============================================================================
// Retry and circuit breaker
// =============================================================================

func (s *WorkerSuite) TestRetriesTransientFailureThenSucceeds() {
	job := s.newJob()
	s.expectMiss()
	gomock.InOrder(
		s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(ports.EnrichmentResult{}, transportErr()),
		s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil),
	)
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.expectProvenance()
	s.cache.EXPECT().Put(gomock.Any(), job.Key, gomock.Any()).Return(nil)

	_, err := s.worker.Process(context.Background(), job)

	s.Require().NoError(err)
	s.Equal(uint32(2), s.worker.policy.snapshot().CallsUsed)
	s.Equal(circuit.StateClosed, s.worker.policy.snapshot().State)
}

func (s *WorkerSuite) TestConsecutiveRetryableFailuresOpenCircuit() {
	job := s.newJob()
	s.expectMiss()
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(ports.EnrichmentResult{}, transportErr()).Times(s.cfg.FailureThreshold)

	_, err := s.worker.Process(context.Background(), job)

	var ee *EnrichmentError
	s.Require().ErrorAs(err, &ee)
	s.Equal(KindSourceUnavailable, ee.Kind)
	s.True(ee.Retryable)
	s.Equal(circuit.StateOpen, s.worker.policy.snapshot().State)
	s.Require().Len(s.changes, 1)
	s.Equal(circuit.StateClosed, s.changes[0].From)
	s.Equal(circuit.StateOpen, s.changes[0].To)
}

func (s *WorkerSuite) TestOpenCircuitRefusesWithoutCallingSource() {
	s.tripCircuit()

	job := s.newJob()
	s.expectMiss()
	s.clock.Advance(s.cfg.OpenCooldown - time.Second)

	_, err := s.worker.Process(context.Background(), job)

	var ee *EnrichmentError
	s.Require().ErrorAs(err, &ee)
	s.Equal(KindCircuitOpen, ee.Kind)
	s.True(IsRetryable(err))
}

func (s *WorkerSuite) TestHalfOpenProbeSuccessClosesCircuit() {
	s.tripCircuit()
	s.clock.Advance(s.cfg.OpenCooldown)

	job := s.newJob()
	s.expectMiss()
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(poiResult(), nil).Times(1)
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.expectProvenance()
	s.cache.EXPECT().Put(gomock.Any(), job.Key, gomock.Any()).Return(nil)

	_, err := s.worker.Process(context.Background(), job)

	s.Require().NoError(err)
	s.Equal(circuit.StateClosed, s.worker.policy.snapshot().State)
	s.Require().Len(s.changes, 3)
	s.Equal(circuit.StateHalfOpen, s.changes[1].To)
	s.Equal(circuit.StateClosed, s.changes[2].To)
}

func (s *WorkerSuite) TestHalfOpenProbeFailureReopens() {
	s.tripCircuit()
	s.clock.Advance(s.cfg.OpenCooldown)

	job := s.newJob()
	s.expectMiss()
	// The failed probe reopens the circuit, so the retry is refused without
	// reaching the source.
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(ports.EnrichmentResult{}, transportErr()).Times(1)

	_, err := s.worker.Process(context.Background(), job)

	var ee *EnrichmentError
	s.Require().ErrorAs(err, &ee)
	s.Equal(KindCircuitOpen, ee.Kind)
	s.Equal(circuit.StateOpen, s.worker.policy.snapshot().State)
}

func (s *WorkerSuite) TestSourceRejectionsNeverOpenCircuit() {
	for i := 0; i < s.cfg.FailureThreshold+2; i++ {
		job := s.newJob()
		s.expectMiss()
		s.source.EXPECT().Fetch(gomock.Any(), job.Query).
			Return(ports.EnrichmentResult{}, ports.NewOverpassSourceError(ports.OverpassInvalidRequest, "bad bbox", nil)).
			Times(1)

		_, err := s.worker.Process(context.Background(), job)

		var ee *EnrichmentError
		s.Require().ErrorAs(err, &ee)
		s.Equal(KindSourceRejected, ee.Kind)
		s.False(ee.Retryable)
	}
	s.Equal(circuit.StateClosed, s.worker.policy.snapshot().State)
	s.Empty(s.changes)
}

func (s *WorkerSuite) TestQuotaExhaustionSkipsSource() {
	s.cfg.CallBudget = 1
	s.build()

	first := s.newJob()
	s.expectMiss()
	s.source.EXPECT().Fetch(gomock.Any(), first.Query).Return(poiResult(), nil).Times(1)
	s.repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
	s.expectProvenance()
	s.cache.EXPECT().Put(gomock.Any(), first.Key, gomock.Any()).Return(nil)
	_, err := s.worker.Process(context.Background(), first)
	s.Require().NoError(err)

	second := s.newJob()
	s.expectMiss()
	_, err = s.worker.Process(context.Background(), second)

	var ee *EnrichmentError
	s.Require().ErrorAs(err, &ee)
	s.Equal(KindQuotaExhausted, ee.Kind)
	s.True(ee.Retryable)
}

// =============================================================================
// Cancellation and shutdown
// =============================================================================

func (s *WorkerSuite) TestCancellationLeavesStateUntouched() {
	job := s.newJob()
	s.expectMiss()
	ctx, cancel := context.WithCancel(context.Background())
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).DoAndReturn(
		func(context.Context, ports.OverpassQuery) (ports.EnrichmentResult, error) {
			cancel()
			return ports.EnrichmentResult{}, ports.NewOverpassSourceError(ports.OverpassTimeout, "context canceled", context.Canceled)
		})

	_, err := s.worker.Process(ctx, job)

	s.Require().Error(err)
	s.ErrorIs(err, context.Canceled)
	s.False(IsRetryable(err))
	snap := s.worker.policy.snapshot()
	s.Equal(uint32(0), snap.CallsUsed)
	s.Equal(0, snap.InFlight)
	s.Equal(circuit.StateClosed, snap.State)
	s.Empty(s.changes)
}

func (s *WorkerSuite) TestClosedWorkerFailsClosed() {
	s.worker.Close()
	job := s.newJob()
	s.expectMiss()

	_, err := s.worker.Process(context.Background(), job)

	var ee *EnrichmentError
	s.Require().ErrorAs(err, &ee)
	s.Equal(KindStateUnavailable, ee.Kind)
	s.False(ee.Retryable)
}

// tripCircuit drives the breaker open with one job whose every attempt fails.
func (s *WorkerSuite) tripCircuit() {
	job := s.newJob()
	s.expectMiss()
	s.source.EXPECT().Fetch(gomock.Any(), job.Query).Return(ports.EnrichmentResult{}, transportErr()).Times(s.cfg.FailureThreshold)
	_, err := s.worker.Process(context.Background(), job)
	s.Require().Error(err)
	s.Require().Equal(circuit.StateOpen, s.worker.policy.snapshot().State)
}

func TestNewRequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockOverpassEnrichmentSource(ctrl)
	repo := mocks.NewMockRouteRepository[testPlan](ctrl)
	cache := mocks.NewMockRouteCache[testPlan](ctrl)
	prov := mocks.NewMockEnrichmentProvenanceRepository(ctrl)
	metrics := mocks.NewMockRouteMetrics(ctrl)

	_, err := New[testPlan](nil, repo, cache, prov, metrics, testMerger{}, DefaultConfig())
	require.Error(t, err, "missing source")

	_, err = New[testPlan](source, repo, cache, nil, metrics, testMerger{}, DefaultConfig())
	require.Error(t, err, "missing provenance repository")

	_, err = New[testPlan](source, repo, cache, prov, metrics, nil, DefaultConfig())
	require.Error(t, err, "missing merger")

	bad := DefaultConfig()
	bad.MaxAttempts = 0
	_, err = New[testPlan](source, repo, cache, prov, metrics, testMerger{}, bad)
	require.Error(t, err, "invalid config")
}
