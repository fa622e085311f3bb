package waitlist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gazon-app/waitlist/internal/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestSignup(t *testing.T) (*MockWaitlistStore, *MockNotifier, *SignupController) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockStore := NewMockWaitlistStore(ctrl)
	mockNotifier := NewMockNotifier(ctrl)
	logger := log.NewLoggerWithJSONOutput()
	controller := NewSignupController(logger, mockStore, mockNotifier, nil)
	return mockStore, mockNotifier, controller
}

func TestSubmit_BlankInputNeverReachesStore(t *testing.T) {
	for _, input := range []string{"", " ", "   ", "\t", "\n \t "} {
		_, mockNotifier, controller := newTestSignup(t)

		mockNotifier.EXPECT().NotifyError(MessageEmailRequired).Times(1)

		result := controller.Submit(context.Background(), input)

		assert.Equal(t, StatusInvalid, result.Status)
		require.NotNil(t, result.Notification)
		assert.Equal(t, NotificationError, result.Notification.Kind)
		assert.ErrorIs(t, result.Err, ErrEmailRequired)
		assert.Equal(t, PhaseIdle, controller.State().Phase)
	}
}

func TestSubmit_MalformedEmailIsValidationError(t *testing.T) {
	_, mockNotifier, controller := newTestSignup(t)

	mockNotifier.EXPECT().NotifyError(MessageEmailInvalid).Times(1)

	result := controller.Submit(context.Background(), "not-an-email")

	assert.Equal(t, StatusInvalid, result.Status)
	var validationErr *ValidationError
	assert.True(t, errors.As(result.Err, &validationErr))
	assert.Equal(t, "not-an-email", controller.State().EmailInput)
	assert.Equal(t, PhaseIdle, controller.State().Phase)
}

func TestSubmit_NewEmailIsInsertedAndInputCleared(t *testing.T) {
	mockStore, mockNotifier, controller := newTestSignup(t)

	gomock.InOrder(
		mockStore.EXPECT().Insert(gomock.Any(), "a@b.com").Return(OutcomeInserted, nil),
		mockNotifier.EXPECT().NotifySuccess(MessageAdded).Times(1),
	)

	result := controller.Submit(context.Background(), "a@b.com")

	assert.Equal(t, StatusInserted, result.Status)
	assert.NoError(t, result.Err)
	assert.Equal(t, SubmissionState{EmailInput: "", Phase: PhaseIdle}, controller.State())
}

func TestSubmit_NormalizesBeforeInsert(t *testing.T) {
	mockStore, mockNotifier, controller := newTestSignup(t)

	mockStore.EXPECT().Insert(gomock.Any(), "jane.doe@example.com").Return(OutcomeInserted, nil)
	mockNotifier.EXPECT().NotifySuccess(MessageAdded)

	result := controller.Submit(context.Background(), "  Jane.Doe@Example.COM ")
	assert.Equal(t, StatusInserted, result.Status)
}

func TestSubmit_DuplicateIsSuccessAndKeepsInput(t *testing.T) {
	mockStore, mockNotifier, controller := newTestSignup(t)

	mockStore.EXPECT().Insert(gomock.Any(), "a@b.com").Return(OutcomeDuplicate, nil)
	mockNotifier.EXPECT().NotifySuccess(MessageAlreadyListed).Times(1)

	result := controller.Submit(context.Background(), "a@b.com")

	assert.Equal(t, StatusDuplicate, result.Status)
	assert.Equal(t, NotificationSuccess, result.Notification.Kind)
	assert.NoError(t, result.Err)
	assert.Equal(t, SubmissionState{EmailInput: "a@b.com", Phase: PhaseIdle}, controller.State())
}

func TestSubmit_FailureShowsGenericMessage(t *testing.T) {
	mockStore, mockNotifier, controller := newTestSignup(t)

	cause := errors.New("dial tcp 10.0.0.7:5432: connection refused")
	mockStore.EXPECT().Insert(gomock.Any(), "a@b.com").Return(InsertOutcome(0), cause)
	mockNotifier.EXPECT().NotifyError(MessageFailure).Times(1)

	controller.SetInput("a@b.com")
	result := controller.Submit(context.Background(), "a@b.com")

	assert.Equal(t, StatusFailed, result.Status)
	assert.ErrorIs(t, result.Err, cause)
	assert.NotContains(t, result.Notification.Message, "10.0.0.7")
	assert.Equal(t, SubmissionState{EmailInput: "a@b.com", Phase: PhaseIdle}, controller.State())
}

func TestSubmit_UnknownOutcomeIsFailure(t *testing.T) {
	mockStore, mockNotifier, controller := newTestSignup(t)

	mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(InsertOutcome(42), nil)
	mockNotifier.EXPECT().NotifyError(MessageFailure)

	result := controller.Submit(context.Background(), "a@b.com")
	assert.Equal(t, StatusFailed, result.Status)
	assert.Error(t, result.Err)
}

func TestSubmit_PanickingStoreIsRecovered(t *testing.T) {
	notifier := &recordingNotifier{}
	store := storeFunc(func(context.Context, string) (InsertOutcome, error) {
		panic("driver bug")
	})
	controller := NewSignupController(nil, store, notifier, nil)

	result := controller.Submit(context.Background(), "a@b.com")

	assert.Equal(t, StatusFailed, result.Status)
	assert.Equal(t, PhaseIdle, controller.State().Phase)
	assert.Equal(t, []Notification{{Kind: NotificationError, Message: MessageFailure}}, notifier.All())
}

func TestSubmit_NilStoreIsFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	controller := NewSignupController(nil, nil, notifier, nil)

	result := controller.Submit(context.Background(), "a@b.com")

	assert.Equal(t, StatusFailed, result.Status)
	assert.ErrorIs(t, result.Err, ErrStoreUnavailable)
	assert.Len(t, notifier.All(), 1)
}

func TestSubmit_CancelledContextIsFailure(t *testing.T) {
	mockStore, mockNotifier, controller := newTestSignup(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mockStore.EXPECT().Insert(gomock.Any(), "a@b.com").DoAndReturn(
		func(ctx context.Context, _ string) (InsertOutcome, error) {
			return 0, ctx.Err()
		},
	)
	mockNotifier.EXPECT().NotifyError(MessageFailure)

	result := controller.Submit(ctx, "a@b.com")
	assert.ErrorIs(t, result.Err, context.Canceled)
	assert.Equal(t, PhaseIdle, controller.State().Phase)
}

func TestSubmit_SecondSubmitWhileSubmittingIsIgnored(t *testing.T) {
	store := newBlockingStore(OutcomeInserted)
	notifier := &recordingNotifier{}
	controller := NewSignupController(nil, store, notifier, nil)

	done := make(chan SubmitResult, 1)
	go func() {
		done <- controller.Submit(context.Background(), "first@b.com")
	}()

	select {
	case <-store.started:
	case <-time.After(2 * time.Second):
		t.Fatal("store was never called")
	}
	assert.Equal(t, PhaseSubmitting, controller.State().Phase)

	ignored := controller.Submit(context.Background(), "second@b.com")
	assert.Equal(t, StatusIgnored, ignored.Status)
	assert.Nil(t, ignored.Notification)
	assert.Equal(t, "first@b.com", controller.State().EmailInput)
	assert.Equal(t, 1, store.Calls())
	assert.Empty(t, notifier.All())

	// The field stays editable while a submission is in flight.
	controller.SetInput("typing@b.com")
	assert.Equal(t, "typing@b.com", controller.State().EmailInput)

	close(store.release)

	select {
	case result := <-done:
		assert.Equal(t, StatusInserted, result.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("submit never resolved")
	}

	assert.Equal(t, 1, store.Calls())
	assert.Equal(t, []Notification{{Kind: NotificationSuccess, Message: MessageAdded}}, notifier.All())
	assert.Equal(t, SubmissionState{EmailInput: "", Phase: PhaseIdle}, controller.State())

	// Once idle, the next submission goes through.
	next := controller.Submit(context.Background(), "third@b.com")
	assert.Equal(t, StatusInserted, next.Status)
	assert.Equal(t, 2, store.Calls())
}

func TestSubmit_SameEmailTwiceIsInsertedThenDuplicate(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	controller := NewSignupController(nil, NewSQLStore(NewWaitlistRepository(db)), notifier, nil)

	first := controller.Submit(context.Background(), "a@b.com")
	second := controller.Submit(context.Background(), "A@B.com")

	assert.Equal(t, StatusInserted, first.Status)
	assert.Equal(t, StatusDuplicate, second.Status)
	assert.NoError(t, second.Err)
	assert.Equal(t, int64(1), countEntries(t, db, "a@b.com"))
	assert.Equal(t, []Notification{
		{Kind: NotificationSuccess, Message: MessageAdded},
		{Kind: NotificationSuccess, Message: MessageAlreadyListed},
	}, notifier.All())
}

func TestSubmit_RecordsSubmissionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	store := storeFunc(func(context.Context, string) (InsertOutcome, error) { return OutcomeInserted, nil })
	controller := NewSignupController(nil, store, NewMetricsNotifier(metrics), metrics)

	controller.Submit(context.Background(), "a@b.com")
	controller.Submit(context.Background(), "")

	assert.Equal(t, 1.0, metricValue(t, reg, "waitlist_submissions_total", map[string]string{"status": "inserted"}))
	assert.Equal(t, 1.0, metricValue(t, reg, "waitlist_submissions_total", map[string]string{"status": "invalid"}))
	assert.Equal(t, 1.0, metricValue(t, reg, "waitlist_notifications_total", map[string]string{"kind": "success"}))
	assert.Equal(t, 1.0, metricValue(t, reg, "waitlist_notifications_total", map[string]string{"kind": "error"}))
}

func TestPhaseAndStatus_Text(t *testing.T) {
	text, err := PhaseSubmitting.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "submitting", string(text))
	assert.Equal(t, "duplicate", StatusDuplicate.String())
	assert.True(t, SubmissionState{Phase: PhaseDone}.Busy())
	assert.False(t, SubmissionState{}.Busy())
}
