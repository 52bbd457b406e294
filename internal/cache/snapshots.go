package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Requests counts snapshot lookups by result (hit, miss, error).
var Requests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "yatube_page_cache_requests_total",
	Help: "Total number of page cache lookups",
}, []string{"result"})

// Snapshots shares one rendered fragment per name between every visitor for ttl.
// Nothing but expiry or Clear on the underlying cache removes a snapshot.
type Snapshots struct {
	pc     PageCache
	prefix string
	ttl    time.Duration
	log    *zap.Logger
}

func NewSnapshots(pc PageCache, prefix string, ttl time.Duration, log *zap.Logger) *Snapshots {
	return &Snapshots{pc: pc, prefix: prefix, ttl: ttl, log: log}
}

// Get returns the snapshot stored for name, calling build on a miss. A failed
// build is returned and not stored. Cache read and write failures only get logged.
func (s *Snapshots) Get(ctx context.Context, name string, build func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	key := s.prefix + ":" + name

	data, ok, err := s.pc.Get(ctx, key)
	switch {
	case err != nil:
		Requests.WithLabelValues("error").Inc()
		s.log.Warn("Page cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		Requests.WithLabelValues("hit").Inc()
		return data, nil
	default:
		Requests.WithLabelValues("miss").Inc()
	}

	data, err = build(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.pc.Set(ctx, key, data, s.ttl); err != nil {
		s.log.Warn("Page cache write failed", zap.String("key", key), zap.Error(err))
	}
	return data, nil
}
