// Package recommendation fuses crop cycles, risk alerts and upstream snapshots into a ranked,
// deduplicated, expiring list of recommendations per client, cached between requests.
package recommendation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/osse101/CropCycle_Go/internal/concurrency"
	"github.com/osse101/CropCycle_Go/internal/crops"
	"github.com/osse101/CropCycle_Go/internal/datasource"
	"github.com/osse101/CropCycle_Go/internal/domain"
	"github.com/osse101/CropCycle_Go/internal/logger"
	"github.com/osse101/CropCycle_Go/internal/metrics"
	"github.com/osse101/CropCycle_Go/internal/utils"
)

// Service defines the recommendation engine
type Service interface {
	// Generate returns the client's recommendations, from cache unless opts.Refresh is set or the
	// cached entry was built with different options
	Generate(ctx context.Context, clientID string, opts domain.GenerateOptions) (*domain.GenerationResult, error)
	// GetCached returns up to limit cached recommendations, newest first, generating with every
	// source on a miss
	GetCached(ctx context.Context, clientID string, limit int) (*domain.GenerationResult, error)
}

// CycleLister loads a client's crop cycles; cropcycle.Service satisfies it
type CycleLister interface {
	ListCycles(ctx context.Context, clientID string) ([]domain.CropCycle, error)
}

// RiskAssessor evaluates and records risks for a cycle; *risk.Assessor satisfies it
type RiskAssessor interface {
	Assess(ctx context.Context, cycle *domain.CropCycle, snaps domain.Snapshots) ([]domain.RiskAlert, error)
}

// SnapshotCollector fetches snapshots for several cycles at once; *datasource.Gateway satisfies it
type SnapshotCollector interface {
	Collect(ctx context.Context, targets []datasource.Target, opts domain.GenerateOptions) *datasource.Result
}

// Config tunes the engine
type Config struct {
	CacheTTL          time.Duration
	GenerationTimeout time.Duration
}

// Deps are the engine's collaborators. Advisor, Cache, Locker and Epochs have defaults;
// Epochs must be shared with the Invalidator of Cache.
type Deps struct {
	Cycles   CycleLister
	Assessor RiskAssessor
	Gateway  SnapshotCollector
	Catalog  *crops.Catalog
	Advisor  AdvisoryModel
	Cache    Cache
	Locker   Locker
	Epochs   *Epochs
}

type service struct {
	deps   Deps
	cfg    Config
	flight singleflight.Group
	locks  *concurrency.LockManager
	now    func() time.Time
}

// NewService creates a new recommendation engine
func NewService(deps Deps, cfg Config) Service {
	if deps.Advisor == nil {
		deps.Advisor = NewRuleAdvisor()
	}
	if deps.Cache == nil {
		deps.Cache = NewMemoryCache(DefaultCacheSize, cfg.CacheTTL)
	}
	if deps.Locker == nil {
		deps.Locker = NopLocker{}
	}
	if deps.Epochs == nil {
		deps.Epochs = NewEpochs()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = DefaultGenerationTimeout
	}
	return &service{
		deps:  deps,
		cfg:   cfg,
		locks: concurrency.NewLockManager(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Generate implements Service
func (s *service) Generate(ctx context.Context, clientID string, opts domain.GenerateOptions) (*domain.GenerationResult, error) {
	log := logger.FromContext(ctx)

	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("%w: client_id is required", domain.ErrValidation)
	}
	refresh := opts.Refresh
	opts.Refresh = false

	if !refresh {
		if entry, ok := s.deps.Cache.Get(ctx, clientID); ok && entry.Options == opts {
			metrics.CacheLookups.WithLabelValues(metrics.CacheResultHit).Inc()
			log.Debug(LogMsgCacheHit, "clientID", clientID)
			result := copyResult(&entry.Result)
			result.Recommendations = DropExpired(result.Recommendations, s.now())
			return result, nil
		}
		metrics.CacheLookups.WithLabelValues(metrics.CacheResultMiss).Inc()
	}

	// Callers for the same client and options share one run; the run outlives any single caller's cancellation
	key := clientID + "|" + optionsKey(opts)
	v, err, shared := s.flight.Do(key, func() (interface{}, error) {
		return s.generate(context.WithoutCancel(ctx), clientID, opts)
	})
	if shared {
		metrics.GenerationsCoalesced.Inc()
		log.Debug(LogMsgGenerationShared, "clientID", clientID)
	}
	if err != nil {
		return nil, err
	}
	return copyResult(v.(*domain.GenerationResult)), nil
}

// GetCached implements Service
func (s *service) GetCached(ctx context.Context, clientID string, limit int) (*domain.GenerationResult, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, fmt.Errorf("%w: client_id is required", domain.ErrValidation)
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: max must not be negative", domain.ErrValidation)
	}

	var result *domain.GenerationResult
	if entry, ok := s.deps.Cache.Get(ctx, clientID); ok {
		metrics.CacheLookups.WithLabelValues(metrics.CacheResultHit).Inc()
		result = copyResult(&entry.Result)
	} else {
		metrics.CacheLookups.WithLabelValues(metrics.CacheResultMiss).Inc()
		generated, err := s.Generate(ctx, clientID, domain.AllSources())
		if err != nil {
			return nil, err
		}
		result = generated
	}

	result.Recommendations = MostRecent(DropExpired(result.Recommendations, s.now()), limit)
	return result, nil
}

func (s *service) generate(ctx context.Context, clientID string, opts domain.GenerateOptions) (*domain.GenerationResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.GenerationTimeout)
	defer cancel()

	unlock := s.locks.Lock(concurrency.ClientKey(clientID))
	defer unlock()

	release, err := s.deps.Locker.Obtain(ctx, concurrency.ClientKey(clientID))
	if err != nil {
		log.Warn(LogMsgLockNotObtained, "clientID", clientID, "error", err)
	} else {
		defer release()
	}

	epoch := s.deps.Epochs.Current(clientID)

	cycles, err := s.deps.Cycles.ListCycles(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(cycles) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrClientNotFound, clientID)
	}

	active := make([]domain.CropCycle, 0, len(cycles))
	for _, c := range cycles {
		if c.IsActive() {
			active = append(active, c)
		}
	}

	now := s.now()
	result := &domain.GenerationResult{
		Recommendations:    []domain.Recommendation{},
		GeneratedAt:        now,
		UnavailableSources: []string{},
	}

	if len(active) > 0 {
		targets := make([]datasource.Target, len(active))
		for i, c := range active {
			targets[i] = datasource.TargetForCycle(c)
		}
		collected := s.deps.Gateway.Collect(ctx, targets, opts)
		if len(collected.Unavailable) > 0 {
			result.UnavailableSources = collected.Unavailable
		}

		var drafts []domain.Recommendation
		for i := range active {
			drafts = append(drafts, s.draftsFor(ctx, &active[i], collected.For(active[i].ID), now)...)
		}
		result.Recommendations = Rank(Dedup(DropExpired(drafts, now)))
	}

	s.store(ctx, clientID, epoch, &Entry{Options: opts, Result: *result})

	for _, r := range result.Recommendations {
		metrics.RecommendationsGenerated.WithLabelValues(string(r.Type), string(r.Priority)).Inc()
	}
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	log.Info(LogMsgGenerated, "clientID", clientID, "cycles", len(active),
		"recommendations", len(result.Recommendations), "unavailable", result.UnavailableSources)
	return result, nil
}

// store caches entry unless the client was invalidated since epoch. An invalidation landing
// between the check and the write is caught by the second check.
func (s *service) store(ctx context.Context, clientID string, epoch uint64, entry *Entry) {
	log := logger.FromContext(ctx)
	if s.deps.Epochs.Current(clientID) != epoch {
		log.Debug(LogMsgStaleResultDropped, "clientID", clientID)
		return
	}
	if err := s.deps.Cache.Put(ctx, clientID, entry, s.cacheTTL(entry.Result.Recommendations)); err != nil {
		log.Warn(LogMsgCacheWriteFailed, "clientID", clientID, "error", err)
		return
	}
	if s.deps.Epochs.Current(clientID) != epoch {
		log.Debug(LogMsgStaleResultDropped, "clientID", clientID)
		if err := s.deps.Cache.Invalidate(ctx, clientID); err != nil {
			log.Warn(LogMsgInvalidateFailed, "clientID", clientID, "error", err)
		}
	}
}

// cacheTTL caps the configured TTL at the first expiry among recs so a cached list never outlives its entries
func (s *service) cacheTTL(recs []domain.Recommendation) time.Duration {
	ttl := s.cfg.CacheTTL
	now := s.now()
	for _, r := range recs {
		if r.ExpiresAt == nil {
			continue
		}
		if left := r.ExpiresAt.Sub(now); left < ttl {
			ttl = left
		}
	}
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

// draftsFor collects risk and advisory drafts for one cycle; a failed assessment only drops the risk drafts
func (s *service) draftsFor(ctx context.Context, cycle *domain.CropCycle, snaps domain.Snapshots, now time.Time) []domain.Recommendation {
	var drafts []domain.Recommendation

	alerts, err := s.deps.Assessor.Assess(ctx, cycle, snaps)
	if err != nil {
		logger.FromContext(ctx).Error(LogMsgAssessFailed, "cycleID", cycle.ID, "error", err)
	}
	for _, a := range alerts {
		if rec, ok := FromAlert(a, snaps); ok {
			drafts = append(drafts, rec)
		}
	}

	advice := s.deps.Advisor.Advise(Input{
		Cycle:     *cycle,
		Profile:   s.deps.Catalog.ProfileOrDefault(cycle.CropID),
		Snapshots: snaps,
		Now:       now,
	})
	drafts = append(drafts, sanitize(ctx, advice)...)
	return Stamp(drafts, cycle.ClientID, cycle.ID, now)
}

// sanitize drops advisory drafts outside the known vocabulary and clamps urgency to the planning horizon
func sanitize(ctx context.Context, drafts []domain.Recommendation) []domain.Recommendation {
	out := make([]domain.Recommendation, 0, len(drafts))
	for _, d := range drafts {
		if !d.Type.Valid() || !d.Priority.Valid() {
			logger.FromContext(ctx).Warn(LogMsgDraftDropped, "type", d.Type, "priority", d.Priority, "title", d.Title)
			continue
		}
		d.UrgencyHours = utils.ClampInt(d.UrgencyHours, 0, MaxUrgencyHours)
		out = append(out, d)
	}
	return out
}

func optionsKey(o domain.GenerateOptions) string {
	return fmt.Sprintf("w%t:m%t:s%t", o.IncludeWeather, o.IncludeMarket, o.IncludeSoil)
}

// copyResult returns a result callers may modify without touching cached or shared state
func copyResult(r *domain.GenerationResult) *domain.GenerationResult {
	out := *r
	out.Recommendations = make([]domain.Recommendation, len(r.Recommendations))
	copy(out.Recommendations, r.Recommendations)
	out.UnavailableSources = append([]string{}, r.UnavailableSources...)
	return &out
}
