package waitlist

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gazon-app/waitlist/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "waitlist.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.ModelRegistry...))
	return db
}

func countEntries(t *testing.T, db *gorm.DB, email string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.WaitlistEntry{}).Where("email = ?", email).Count(&n).Error)
	return n
}

// storeFunc adapts a function to WaitlistStore for fakes that block or panic.
type storeFunc func(ctx context.Context, email string) (InsertOutcome, error)

func (f storeFunc) Insert(ctx context.Context, email string) (InsertOutcome, error) {
	return f(ctx, email)
}

func (f storeFunc) Ping(context.Context) error { return nil }

// blockingStore parks every Insert until release is closed.
type blockingStore struct {
	started chan string
	release chan struct{}
	outcome InsertOutcome

	mu    sync.Mutex
	calls int
}

func newBlockingStore(outcome InsertOutcome) *blockingStore {
	return &blockingStore{
		started: make(chan string, 8),
		release: make(chan struct{}),
		outcome: outcome,
	}
}

func (s *blockingStore) Insert(_ context.Context, email string) (InsertOutcome, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	s.started <- email
	<-s.release
	return s.outcome, nil
}

func (s *blockingStore) Ping(context.Context) error { return nil }

func (s *blockingStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingNotifier struct {
	mu            sync.Mutex
	notifications []Notification
}

func (n *recordingNotifier) NotifySuccess(message string) {
	n.record(Notification{Kind: NotificationSuccess, Message: message})
}

func (n *recordingNotifier) NotifyError(message string) {
	n.record(Notification{Kind: NotificationError, Message: message})
}

func (n *recordingNotifier) record(notification Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *recordingNotifier) All() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.notifications...)
}

// metricValue returns the counter or gauge value of the series matching labels.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want == pair.GetValue() {
					matched++
				}
			}
			if matched != len(labels) {
				continue
			}
			switch {
			case metric.GetCounter() != nil:
				return metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				return metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				return float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}
