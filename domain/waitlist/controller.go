package waitlist

import (
	"errors"
	"net/http"
	"time"

	"github.com/gazon-app/waitlist/config/router"
	"github.com/gazon-app/waitlist/internal/log"
	apperrors "github.com/gazon-app/waitlist/pkg/errors"
	"github.com/gazon-app/waitlist/pkg/factory"
	"github.com/google/uuid"
)

const (
	SessionCookieName = "waitlist_session"

	MessageSubmissionInProgress = "A submission is already in progress"
	MessageInputUpdated         = "Input updated"
	MessageStateRetrieved       = "Signup state retrieved"
)

func NewWaitlistController(
	store WaitlistStore,
	logger *log.Logger,
	limiters factory.RateLimiterFactory,
	metrics *Metrics,
	settings Settings,
) *router.RESTController {

	return router.NewVersionedRESTController(
		"WaitlistController",
		"v1",
		"/waitlist",
		func(rs *router.RouterService, c *router.RESTController) {
			notifier := MultiNotifier(NewLogNotifier(logger), NewMetricsNotifier(metrics))
			sessions := NewSessionRegistry(func() *SignupController {
				return NewSignupController(logger, store, notifier, metrics)
			}, settings.SessionTTL, metrics)

			h := &signupHandlers{sessions: sessions, ttl: settings.SessionTTL}

			var signupLimiter = limiters.CreateRateLimiter("waitlist-signup", settings.SignupRequestsPerMinute, time.Minute)

			rs.AddPostHandler(c, signupLimiter, "", h.submit)
			rs.AddPutHandler(c, nil, "/input", h.setInput)
			rs.AddGetHandler(c, nil, "/state", h.state)
		},
	)
}

type signupHandlers struct {
	sessions *SessionRegistry
	ttl      time.Duration
}

func (h *signupHandlers) submit(ctx *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(ctx)

	var req SignupRequest
	if result := bindJSON(ctx, logger, &req); result != nil {
		return result
	}

	controller := h.sessions.Get(h.sessionID(ctx))
	result := controller.Submit(ctx.Request.Context(), req.Email)

	response := SignupResponse{Status: result.Status, State: controller.State()}

	switch result.Status {
	case StatusInserted:
		return router.CreatedResult(response, result.Notification.Message)
	case StatusDuplicate:
		return router.OKResult(response, result.Notification.Message)
	case StatusInvalid:
		return router.BadRequestResult(result.Notification.Message, response)
	case StatusIgnored:
		return router.ErrorResult(http.StatusConflict, MessageSubmissionInProgress, response)
	default:
		statusCode := apperrors.StatusInternalServerError
		if errors.Is(result.Err, ErrStoreUnavailable) {
			statusCode = apperrors.StatusServiceUnavailable
		}
		return router.ErrorResult(statusCode, result.Notification.Message, response)
	}
}

func (h *signupHandlers) setInput(ctx *router.RequestContext) *router.ServiceResult {
	logger := router.GetLogger(ctx)

	var req InputRequest
	if result := bindJSON(ctx, logger, &req); result != nil {
		return result
	}

	controller := h.sessions.Get(h.sessionID(ctx))
	controller.SetInput(req.Email)

	return router.OKResult(StateResponse{State: controller.State()}, MessageInputUpdated)
}

func (h *signupHandlers) state(ctx *router.RequestContext) *router.ServiceResult {
	var state SubmissionState
	if id, ok := existingSessionID(ctx); ok {
		if controller, found := h.sessions.Lookup(id); found {
			state = controller.State()
		}
	}

	return router.OKResult(StateResponse{State: state}, MessageStateRetrieved)
}

// sessionID reuses the caller's session cookie or issues a new one.
func (h *signupHandlers) sessionID(ctx *router.RequestContext) string {
	if id, ok := existingSessionID(ctx); ok {
		return id
	}

	id := uuid.NewString()
	maxAge := int(h.ttl.Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookieName, id, maxAge, "/", "", ctx.Request.TLS != nil, true)
	return id
}

func existingSessionID(ctx *router.RequestContext) (string, bool) {
	raw, err := ctx.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func bindJSON(ctx *router.RequestContext, logger *log.Logger, req any) *router.ServiceResult {
	if err := ctx.ShouldBindJSON(req); err != nil {
		logger.Error("Failed to bind request", "error", err)

		validationErrors := apperrors.FormatValidationErrors(err, req)
		if len(validationErrors) > 0 {
			return router.BadRequestResult("Invalid request payload", validationErrors)
		}

		return router.BadRequestResult("Invalid request body", nil)
	}
	return nil
}
