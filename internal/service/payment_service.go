package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"etuitions-server/internal/broker"
	"etuitions-server/internal/models"
	"etuitions-server/internal/payments"
	"etuitions-server/internal/store"
	"etuitions-server/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TutorStore is the tutor lookup needed by the confirmation path
type TutorStore interface {
	GetTutorByID(ctx context.Context, id int64) (*models.Tutor, error)
}

// OrderStore persists materialized orders
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) (bool, error)
	GetOrderByTransactionID(ctx context.Context, transactionID string) (*models.Order, error)
	ListOrdersByStudent(ctx context.Context, email string) ([]models.Order, error)
}

// Confirmation outcomes
const (
	OutcomeCreated          = "created"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeNotCompleted     = "not_completed"
	OutcomeInvalidReference = "invalid_reference"
)

// PaymentService orchestrates checkout session creation and the
// payment-confirmation reconciliation step.
type PaymentService struct {
	provider        payments.Provider
	tutors          TutorStore
	orders          OrderStore
	events          *broker.EventPublisher
	logger          *zap.Logger
	clientOrigin    string
	providerTimeout time.Duration
	storeTimeout    time.Duration
}

// NewPaymentService creates a new payment service. events may be nil when no
// broker is configured.
func NewPaymentService(
	provider payments.Provider,
	tutors TutorStore,
	orders OrderStore,
	events *broker.EventPublisher,
	clientOrigin string,
	providerTimeout, storeTimeout time.Duration,
) *PaymentService {
	return &PaymentService{
		provider:        provider,
		tutors:          tutors,
		orders:          orders,
		events:          events,
		logger:          util.GetLogger(),
		clientOrigin:    clientOrigin,
		providerTimeout: providerTimeout,
		storeTimeout:    storeTimeout,
	}
}

// CheckoutRequest is a purchase intent for one tutoring engagement
type CheckoutRequest struct {
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	Quantity     int64   `json:"quantity" binding:"required,min=1"`
	StudentEmail string  `json:"studentEmail" binding:"required,email"`
	TutorID      int64   `json:"tutorId" binding:"required"`
}

// CheckoutResponse carries the provider-hosted payment page URL
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ConfirmRequest identifies the session to reconcile
type ConfirmRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// ConfirmResult reports what the confirmation did. The original service
// answered nothing on most paths; the explicit outcome lets callers tell
// "already processed" from "tutor deleted" from "not yet paid".
type ConfirmResult struct {
	Outcome string        `json:"outcome"`
	Order   *models.Order `json:"order,omitempty"`
}

// CreateCheckoutSession builds a provider session for the purchase intent.
// The tutor and student identifiers travel in session metadata so the
// confirmation path can recover them without a local pending-orders table.
func (ps *PaymentService) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreateCheckoutSession")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ProviderCallLatency.WithLabelValues("create_session").Observe(time.Since(start).Seconds())
	}()

	params := payments.CreateSessionParams{
		Name:          req.Name,
		Description:   req.Description,
		Image:         req.Image,
		UnitAmount:    payments.MinorUnits(req.Price),
		Quantity:      req.Quantity,
		CustomerEmail: req.StudentEmail,
		Metadata: map[string]string{
			payments.MetadataTutorID:      strconv.FormatInt(req.TutorID, 10),
			payments.MetadataStudentEmail: req.StudentEmail,
		},
		SuccessURL: fmt.Sprintf("%s/payment-success?session_id={CHECKOUT_SESSION_ID}", ps.clientOrigin),
		CancelURL:  fmt.Sprintf("%s/payment-cancel/%d", ps.clientOrigin, req.TutorID),
	}

	providerCtx, cancel := context.WithTimeout(ctx, ps.providerTimeout)
	defer cancel()

	sess, err := ps.provider.CreateSession(providerCtx, params)
	if err != nil {
		util.CheckoutSessionsFailedTotal.WithLabelValues("provider_error").Inc()
		return nil, fmt.Errorf("checkout session creation failed: %w", err)
	}

	util.CheckoutSessionsCreatedTotal.Inc()
	ps.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.Int64("tutor_id", req.TutorID),
		zap.String("student_email", req.StudentEmail))

	return &CheckoutResponse{URL: sess.URL}, nil
}

// ConfirmPayment reconciles a provider-reported payment into at most one
// order. Retries with the same session id are safe: the unique index on
// transaction_id arbitrates, not the preceding reads.
func (ps *PaymentService) ConfirmPayment(ctx context.Context, sessionID string) (*ConfirmResult, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ConfirmPayment")
	defer span.End()

	sess, err := ps.retrieveSession(ctx, sessionID)
	if err != nil {
		util.ConfirmationsFailedTotal.WithLabelValues("provider_error").Inc()
		return nil, fmt.Errorf("session retrieval failed: %w", err)
	}

	tutorID, err := strconv.ParseInt(sess.Metadata[payments.MetadataTutorID], 10, 64)
	if err != nil {
		util.ConfirmationsRejectedTotal.WithLabelValues("bad_metadata").Inc()
		ps.logger.Warn("Session metadata has no usable tutor id",
			zap.String("session_id", sessionID))
		return &ConfirmResult{Outcome: OutcomeInvalidReference}, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, ps.storeTimeout)
	defer cancel()

	tutor, err := ps.tutors.GetTutorByID(storeCtx, tutorID)
	if errors.Is(err, store.ErrNotFound) {
		util.ConfirmationsRejectedTotal.WithLabelValues("tutor_missing").Inc()
		ps.logger.Warn("Confirmation references a missing tutor",
			zap.String("session_id", sessionID),
			zap.Int64("tutor_id", tutorID))
		return &ConfirmResult{Outcome: OutcomeInvalidReference}, nil
	}
	if err != nil {
		util.ConfirmationsFailedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("tutor lookup failed: %w", err)
	}

	if sess.Status != payments.SessionStatusComplete {
		util.ConfirmationsRejectedTotal.WithLabelValues("not_completed").Inc()
		return &ConfirmResult{Outcome: OutcomeNotCompleted}, nil
	}

	if sess.PaymentIntentID == "" {
		util.ConfirmationsFailedTotal.WithLabelValues("provider_error").Inc()
		return nil, fmt.Errorf("completed session %s has no payment intent", sessionID)
	}

	order := &models.Order{
		TutorID:       tutorID,
		TransactionID: sess.PaymentIntentID,
		StudentEmail:  sess.Metadata[payments.MetadataStudentEmail],
		Status:        models.OrderStatusPending,
		Quantity:      1,
		Price:         sess.AmountTotal,
		Image:         tutor.Photo,
	}

	inserted, err := ps.orders.InsertOrder(storeCtx, order)
	if err != nil {
		util.ConfirmationsFailedTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("order insert failed: %w", err)
	}

	if !inserted {
		util.OrdersDuplicateTotal.Inc()
		existing, err := ps.orders.GetOrderByTransactionID(storeCtx, sess.PaymentIntentID)
		if err != nil {
			ps.logger.Warn("Existing order lookup failed after duplicate confirmation",
				zap.String("transaction_id", sess.PaymentIntentID),
				zap.Error(err))
		}
		return &ConfirmResult{Outcome: OutcomeAlreadyProcessed, Order: existing}, nil
	}

	util.OrdersMaterializedTotal.Inc()
	ps.logger.Info("Order materialized",
		zap.Int64("order_id", order.ID),
		zap.String("transaction_id", order.TransactionID),
		zap.Int64("tutor_id", order.TutorID))

	if ps.events != nil {
		event := &models.OrderCreatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCreated,
				Timestamp: time.Now(),
			},
			OrderID:       order.ID,
			TutorID:       order.TutorID,
			TransactionID: order.TransactionID,
			StudentEmail:  order.StudentEmail,
			Amount:        order.Price,
		}
		if err := ps.events.PublishOrderCreated(ctx, event); err != nil {
			ps.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}
	}

	return &ConfirmResult{Outcome: OutcomeCreated, Order: order}, nil
}

// ListStudentOrders retrieves the orders of one student
func (ps *PaymentService) ListStudentOrders(ctx context.Context, email string) ([]models.Order, error) {
	storeCtx, cancel := context.WithTimeout(ctx, ps.storeTimeout)
	defer cancel()
	return ps.orders.ListOrdersByStudent(storeCtx, email)
}

func (ps *PaymentService) retrieveSession(ctx context.Context, sessionID string) (*payments.Session, error) {
	start := time.Now()
	defer func() {
		util.ProviderCallLatency.WithLabelValues("get_session").Observe(time.Since(start).Seconds())
	}()

	providerCtx, cancel := context.WithTimeout(ctx, ps.providerTimeout)
	defer cancel()

	return ps.provider.GetSession(providerCtx, sessionID)
}
