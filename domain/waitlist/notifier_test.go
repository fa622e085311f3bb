package waitlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestMultiNotifier_FansOutAndSkipsNil(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	first := NewMockNotifier(ctrl)
	second := &recordingNotifier{}

	first.EXPECT().NotifySuccess(MessageAdded)
	first.EXPECT().NotifyError(MessageFailure)

	notifier := MultiNotifier(first, nil, second)
	notifier.NotifySuccess(MessageAdded)
	notifier.NotifyError(MessageFailure)

	assert.Equal(t, []Notification{
		{Kind: NotificationSuccess, Message: MessageAdded},
		{Kind: NotificationError, Message: MessageFailure},
	}, second.All())
}

func TestNotification_DeliverToNilNotifier(t *testing.T) {
	assert.NotPanics(t, func() {
		Notification{Kind: NotificationError, Message: MessageFailure}.deliver(nil)
	})
}

func TestMetricsNotifier_NilMetrics(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetricsNotifier(nil).NotifySuccess(MessageAdded)
	})
}
