package waitlist

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gazon-app/waitlist/internal/log"
)

const (
	MessageAdded         = "You've been added to the waitlist!"
	MessageAlreadyListed = "You're already on the waitlist!"
	MessageFailure       = "Something went wrong. Please try again."
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	// PhaseDone only lasts while the feedback notification is delivered.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SubmissionState is owned by one SignupController and never persisted.
type SubmissionState struct {
	EmailInput string `json:"email_input"`
	Phase      Phase  `json:"phase"`
}

// Busy reports whether a new submission would be ignored.
func (s SubmissionState) Busy() bool {
	return s.Phase != PhaseIdle
}

type SubmitStatus int

const (
	StatusIgnored SubmitStatus = iota
	StatusInvalid
	StatusInserted
	StatusDuplicate
	StatusFailed
)

func (s SubmitStatus) String() string {
	switch s {
	case StatusIgnored:
		return "ignored"
	case StatusInvalid:
		return "invalid"
	case StatusInserted:
		return "inserted"
	case StatusDuplicate:
		return "duplicate"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s SubmitStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// SubmitResult describes one Submit call. Notification is nil only for StatusIgnored.
// Err holds the ValidationError or the store failure cause and is for diagnostics only.
type SubmitResult struct {
	Status       SubmitStatus
	Notification *Notification
	Err          error
}

// SignupController validates input, calls the store and turns the outcome into
// exactly one notification per accepted submission. Only one submission may be
// in flight at a time; overlapping calls are ignored.
type SignupController struct {
	logger   *log.Logger
	store    WaitlistStore
	notifier Notifier
	metrics  *Metrics

	mu    sync.Mutex
	state SubmissionState
}

func NewSignupController(logger *log.Logger, store WaitlistStore, notifier Notifier, metrics *Metrics) *SignupController {
	if logger == nil {
		logger = log.NewLoggerWithJSONOutput()
	}
	return &SignupController{
		logger:   logger,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
	}
}

// SetInput mirrors the form field. It is accepted in every phase.
func (c *SignupController) SetInput(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.EmailInput = value
}

func (c *SignupController) State() SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit blocks until the store answers. ctx bounds only the store call; the
// controller adds no timeout of its own.
func (c *SignupController) Submit(ctx context.Context, currentInput string) SubmitResult {
	c.mu.Lock()
	if c.state.Busy() {
		c.mu.Unlock()
		c.metrics.observeSubmission(StatusIgnored)
		return SubmitResult{Status: StatusIgnored}
	}

	c.state.EmailInput = currentInput

	email, err := ValidateEmail(currentInput)
	if err != nil {
		c.mu.Unlock()
		return c.rejectInvalid(err)
	}

	c.state.Phase = PhaseSubmitting
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state.Phase = PhaseIdle
		c.mu.Unlock()
	}()

	outcome, err := c.insert(ctx, email)
	result := c.resolve(ctx, outcome, err)

	c.mu.Lock()
	if result.Status == StatusInserted {
		c.state.EmailInput = ""
	}
	c.state.Phase = PhaseDone
	c.mu.Unlock()

	c.metrics.observeSubmission(result.Status)
	result.Notification.deliver(c.notifier)

	return result
}

func (c *SignupController) rejectInvalid(err error) SubmitResult {
	message := MessageEmailInvalid
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		message = validationErr.UserMessage()
	}

	notification := &Notification{Kind: NotificationError, Message: message}

	c.metrics.observeSubmission(StatusInvalid)
	notification.deliver(c.notifier)

	return SubmitResult{Status: StatusInvalid, Notification: notification, Err: err}
}

func (c *SignupController) resolve(ctx context.Context, outcome InsertOutcome, err error) SubmitResult {
	if err == nil {
		switch outcome {
		case OutcomeInserted:
			return SubmitResult{
				Status:       StatusInserted,
				Notification: &Notification{Kind: NotificationSuccess, Message: MessageAdded},
			}
		case OutcomeDuplicate:
			return SubmitResult{
				Status:       StatusDuplicate,
				Notification: &Notification{Kind: NotificationSuccess, Message: MessageAlreadyListed},
			}
		default:
			err = fmt.Errorf("waitlist store returned unknown outcome %d", outcome)
		}
	}

	logger := log.GetLoggerInstanceFromContext(ctx, c.logger)
	logger.Error("Waitlist signup failed", "error", err)

	return SubmitResult{
		Status:       StatusFailed,
		Notification: &Notification{Kind: NotificationError, Message: MessageFailure},
		Err:          err,
	}
}

// insert turns a panicking store into an ordinary failure so the phase is always released.
func (c *SignupController) insert(ctx context.Context, email string) (outcome InsertOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, err = 0, fmt.Errorf("waitlist store panicked: %v", r)
		}
	}()

	if c.store == nil {
		return 0, ErrStoreUnavailable
	}
	return c.store.Insert(ctx, email)
}
