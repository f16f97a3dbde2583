package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"petcare/backend/internal/cache"
	"petcare/backend/internal/domain"
	"petcare/backend/internal/events"
	"petcare/backend/internal/logging"
	"petcare/backend/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500

	// sideEffectTimeout bounds cache invalidation and event publishing once a
	// unit of work has committed.
	sideEffectTimeout = 3 * time.Second
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// ConflictError reports the booking that blocks a requested time slot.
type ConflictError struct {
	Booking domain.Booking
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"time slot overlaps booking %s (%s to %s); the staff member or room is busy",
		e.Booking.ID,
		e.Booking.StartTime.Format(time.RFC3339),
		e.Booking.EndTime.Format(time.RFC3339),
	)
}

func (e *ConflictError) Unwrap() error {
	return store.ErrConflict
}

type Options struct {
	HistoryCache       cache.StockHistoryCache
	HistoryCacheTTL    time.Duration
	Events             events.Publisher
	DefaultPaymentType string
	DefaultReceiptType string
}

type Service struct {
	repo               store.Repository
	history            cache.StockHistoryCache
	historyTTL         time.Duration
	events             events.Publisher
	defaultPaymentType string
	defaultReceiptType string
	logger             zerolog.Logger
	now                func() time.Time
}

func New(repo store.Repository, opts Options) *Service {
	if opts.HistoryCache == nil {
		opts.HistoryCache = cache.NoopStockHistoryCache{}
	}
	if opts.Events == nil {
		opts.Events = events.NoopPublisher{}
	}
	if opts.DefaultPaymentType == "" {
		opts.DefaultPaymentType = "cash"
	}
	if opts.DefaultReceiptType == "" {
		opts.DefaultReceiptType = "simple"
	}

	return &Service{
		repo:               repo,
		history:            opts.HistoryCache,
		historyTTL:         opts.HistoryCacheTTL,
		events:             opts.Events,
		defaultPaymentType: opts.DefaultPaymentType,
		defaultReceiptType: opts.DefaultReceiptType,
		logger:             logging.Component("service"),
		now:                time.Now,
	}
}

func (s *Service) ListTransactions(ctx context.Context, limit int) ([]domain.Transaction, error) {
	return s.repo.ListTransactions(ctx, normalizeLimit(limit))
}

func (s *Service) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Transaction{}, store.ErrInvalidInput
	}
	tx, err := s.repo.FindTransactionByID(ctx, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	return *tx, nil
}

// CustomerHistory totals every transaction recorded against customerID.
// An unknown customer yields an empty history, not an error.
func (s *Service) CustomerHistory(ctx context.Context, customerID string) (domain.CustomerHistory, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.CustomerHistory{}, invalidInput("customer id is required")
	}
	txs, err := s.repo.ListTransactionsByCustomer(ctx, customerID)
	if err != nil {
		return domain.CustomerHistory{}, err
	}

	summary := domain.CustomerSummary{TotalSpent: decimal.Zero, TotalOrders: len(txs)}
	for _, tx := range txs {
		summary.TotalSpent = summary.TotalSpent.Add(tx.Total)
	}
	return domain.CustomerHistory{
		Success:      true,
		CustomerID:   customerID,
		Summary:      summary,
		Transactions: txs,
	}, nil
}

// afterCommit runs post-commit side effects detached from the caller's
// cancellation. Failures are logged and never undo the committed work.
func (s *Service) afterCommit(ctx context.Context, invalidateHistory bool, routingKey string, payload any) {
	sideCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	logger := s.logger.With().Str("event", routingKey).Logger()
	if actor, ok := ActorFromContext(ctx); ok {
		logger = logger.With().Str("actor", actor.Username).Logger()
	}

	if invalidateHistory {
		if err := s.history.Invalidate(sideCtx); err != nil {
			logger.Warn().Err(err).Msg("stock history cache invalidation failed")
		}
	}
	if routingKey == "" {
		return
	}
	if err := s.events.Publish(sideCtx, routingKey, payload); err != nil {
		logger.Warn().Err(err).Msg("event publish failed")
	}
}

func normalizeLimit(limit int) int {
	if limit < 1 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, store.ErrInvalidInput)...)
}

// IsClientError reports whether err was caused by the request rather than the
// backing store.
func IsClientError(err error) bool {
	return errors.Is(err, store.ErrInvalidInput) || errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict)
}

func defaultString(value string, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
