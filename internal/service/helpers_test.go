package service

import (
	"context"
	"sync"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/opdflow/pkg/metrics"
	"go.uber.org/zap"
)

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (f *fakeAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func newTestAuditService() *AuditService {
	return NewAuditService(&fakeAuditRepo{}, nil, zap.NewNop())
}

var (
	collectorOnce sync.Once
	testMetrics   *metrics.Collector
)

// testCollector returns a process-wide Collector: promauto registers against the
// default registry, so constructing more than one per test binary panics.
func testCollector() *metrics.Collector {
	collectorOnce.Do(func() {
		testMetrics = metrics.NewCollector("opdflow_service_test")
	})
	return testMetrics
}
