package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/keepsake-labs/recall-cli/internal/core/domain"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driven"
	"github.com/keepsake-labs/recall-cli/internal/core/ports/driving"
	"github.com/keepsake-labs/recall-cli/internal/logger"
)

// Ensure Ledger implements the interface.
var _ driving.BudgetService = (*Ledger)(nil)

// projectionWindowDays is the window the period spend is extrapolated to.
const projectionWindowDays = 30.0

// Ledger meters billable operations against a monthly budget.
//
// Billing periods are calendar months in UTC. Threshold alerts latch per
// project and period: crossing 80% twice in one period emits exactly one
// alert.
type Ledger struct {
	usageStore driven.UsageStore
	pricing    driven.PricingTable
	now        func() time.Time

	mu      sync.Mutex
	limit   float64
	alerted map[string]map[int]bool // projectID+period -> threshold -> fired
}

// LedgerOption configures the ledger.
type LedgerOption func(*Ledger)

// WithClock overrides the time source. Used in tests to pin the billing
// period.
func WithClock(now func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.now = now
	}
}

// NewLedger creates a cost ledger with the given budget configuration.
func NewLedger(
	usageStore driven.UsageStore,
	pricing driven.PricingTable,
	budget domain.BudgetConfig,
	opts ...LedgerOption,
) *Ledger {
	l := &Ledger{
		usageStore: usageStore,
		pricing:    pricing,
		now:        time.Now,
		limit:      budget.MonthlyLimit,
		alerted:    make(map[string]map[int]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record meters one billable operation. Cost is a pure function of
// operation kind and quantity looked up from the pricing table at
// recording time; later pricing changes never rewrite the record.
func (l *Ledger) Record(
	ctx context.Context, projectID string, kind domain.OperationKind, quantity int64,
) (*domain.UsageRecord, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown operation kind %q", domain.ErrInvalidInput, kind)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: negative quantity %d", domain.ErrInvalidInput, quantity)
	}

	rec := &domain.UsageRecord{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Kind:      kind,
		Quantity:  quantity,
		Cost:      l.pricing.UnitPrice(kind) * float64(quantity),
		CreatedAt: l.now().UTC(),
	}

	if err := l.usageStore.AppendUsage(ctx, rec); err != nil {
		return nil, fmt.Errorf("append usage: %w", err)
	}

	logger.Debug("Recorded %s usage: quantity=%d cost=%.6f", kind, quantity, rec.Cost)
	return rec, nil
}

// Status evaluates the current billing period.
func (l *Ledger) Status(ctx context.Context, projectID string) (*domain.BudgetStatus, error) {
	now := l.now().UTC()
	periodStart, periodEnd := billingPeriod(now)

	spend, err := l.usageStore.SumCost(ctx, projectID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("sum period cost: %w", err)
	}

	l.mu.Lock()
	limit := l.limit
	l.mu.Unlock()

	status := &domain.BudgetStatus{
		WithinBudget: limit <= 0 || spend < limit,
		Spend:        spend,
		Limit:        limit,
		Projected:    projectSpend(spend, periodStart, now),
	}
	if limit > 0 {
		// Uncapped: values above 100 are valid and signal overspend.
		status.Utilization = spend / limit * 100
	}

	status.Alerts = l.newAlerts(projectID, periodKey(now), status)
	return status, nil
}

// SetLimit updates the monthly limit for future evaluations.
func (l *Ledger) SetLimit(_ context.Context, limit float64) error {
	if limit < 0 {
		return fmt.Errorf("%w: negative budget limit", domain.ErrInvalidInput)
	}
	l.mu.Lock()
	l.limit = limit
	l.mu.Unlock()
	return nil
}

// Reset truncates the project's usage records and alert latches.
// Only this explicit action removes usage history.
func (l *Ledger) Reset(ctx context.Context, projectID string) error {
	if err := l.usageStore.ResetUsage(ctx, projectID); err != nil {
		return fmt.Errorf("reset usage: %w", err)
	}

	// Latch keys are projectID+"/"+period; the separator keeps a reset
	// of "proj" from touching the latches of "proj2".
	prefix := projectID + "/"
	l.mu.Lock()
	for key := range l.alerted {
		if strings.HasPrefix(key, prefix) {
			delete(l.alerted, key)
		}
	}
	l.mu.Unlock()

	logger.Info("Usage metrics reset for project %s", projectID)
	return nil
}

// newAlerts returns the threshold crossings first observed by this
// evaluation, latching each so it fires at most once per period.
func (l *Ledger) newAlerts(projectID, period string, status *domain.BudgetStatus) []domain.BudgetAlert {
	if status.Limit <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := projectID + "/" + period
	fired := l.alerted[key]
	if fired == nil {
		fired = make(map[int]bool)
		l.alerted[key] = fired
	}

	var alerts []domain.BudgetAlert
	for _, threshold := range domain.AlertThresholds {
		if status.Utilization < float64(threshold) || fired[threshold] {
			continue
		}
		fired[threshold] = true
		alerts = append(alerts, domain.BudgetAlert{
			Threshold:   threshold,
			Utilization: status.Utilization,
			Spend:       status.Spend,
			Limit:       status.Limit,
			Period:      period,
		})
		logger.Warn("Budget alert: %d%% of monthly limit reached (%.2f%% used)",
			threshold, status.Utilization)
	}
	return alerts
}

// billingPeriod returns the [start, end) of the calendar month containing t.
func billingPeriod(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// periodKey identifies a billing period, e.g. "2026-08".
func periodKey(t time.Time) string {
	return t.Format("2006-01")
}

// projectSpend linearly extrapolates the period spend so far onto a full
// 30-day window.
func projectSpend(spend float64, periodStart, now time.Time) float64 {
	elapsedDays := now.Sub(periodStart).Hours() / 24
	if elapsedDays < 1 {
		elapsedDays = 1
	}
	return spend / elapsedDays * projectionWindowDays
}
