package waitlist

import (
	"github.com/gazon-app/waitlist/internal/log"
)

//go:generate mockgen -source=notifier.go -destination=mock_notifier.go -package=waitlist

// Notifier delivers user-facing feedback. Calls are fire-and-forget.
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}

type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is the single toast produced by a completed submission.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
}

func (n Notification) deliver(notifier Notifier) {
	if notifier == nil {
		return
	}
	if n.Kind == NotificationSuccess {
		notifier.NotifySuccess(n.Message)
		return
	}
	notifier.NotifyError(n.Message)
}

type multiNotifier []Notifier

// MultiNotifier fans each notification out to every non-nil notifier, in order.
func MultiNotifier(notifiers ...Notifier) Notifier {
	out := make(multiNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multiNotifier) NotifySuccess(message string) {
	for _, n := range m {
		n.NotifySuccess(message)
	}
}

func (m multiNotifier) NotifyError(message string) {
	for _, n := range m {
		n.NotifyError(message)
	}
}

type logNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) NotifySuccess(message string) {
	n.logger.Info("Waitlist notification", "kind", NotificationSuccess, "message", message)
}

func (n *logNotifier) NotifyError(message string) {
	n.logger.Warn("Waitlist notification", "kind", NotificationError, "message", message)
}

type metricsNotifier struct {
	metrics *Metrics
}

func NewMetricsNotifier(metrics *Metrics) Notifier {
	return &metricsNotifier{metrics: metrics}
}

func (n *metricsNotifier) NotifySuccess(string) {
	n.metrics.observeNotification(NotificationSuccess)
}

func (n *metricsNotifier) NotifyError(string) {
	n.metrics.observeNotification(NotificationError)
}
