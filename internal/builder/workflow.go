// Package builder drives one learner's plan from first input to a persisted
// record. A Workflow is owned by a single session.
package builder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/sipcourse-backend/internal/plans"
	"github.com/angelmondragon/sipcourse-backend/internal/records"
	"github.com/angelmondragon/sipcourse-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/sipcourse-backend/pkg/errors"
)

var (
	// ErrSubmissionInFlight rejects input changes and re-entrant submits while
	// the record store call is running.
	ErrSubmissionInFlight = pkgerrors.New(pkgerrors.CodeStateConflict, "plan submission already in progress")
	// ErrAlreadyCompleted rejects changes after the record was created.
	ErrAlreadyCompleted = pkgerrors.New(pkgerrors.CodeStateConflict, "plan already submitted")
	// ErrCourseRequired is returned by Submit when no course was chosen.
	ErrCourseRequired = pkgerrors.New(pkgerrors.CodeValidation, "course is required")
)

// State is a workflow stage.
type State int

const (
	StateEditing State = iota
	StateValidating
	StateSubmitting
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// RecordStore persists a finished plan.
type RecordStore interface {
	CreatePlanRecord(ctx context.Context, input records.CreateInput) (*records.PlanRecord, error)
}

// Invalidator is told when an owner's records changed.
type Invalidator func(ctx context.Context, ownerID uuid.UUID)

// PlanInput is the editable part of a plan.
type PlanInput struct {
	CourseID    uuid.UUID
	Type        enums.PlanType
	Duration    plans.Duration
	DailyAmount decimal.Decimal
	Domains     []string
}

// Params configures a new Workflow.
type Params struct {
	OwnerID          uuid.UUID
	AvailableDomains []string
	Store            RecordStore
	OnCompleted      Invalidator
}

var (
	defaultDuration    = plans.Duration3
	defaultDailyAmount = decimal.NewFromInt(6)
)

// Workflow is the Editing → Validating → Submitting → Completed | Failed
// state machine. Every input change recomputes the projection synchronously.
type Workflow struct {
	mu sync.Mutex

	ownerID     uuid.UUID
	available   []string
	store       RecordStore
	onCompleted Invalidator

	state      State
	courseID   uuid.UUID
	planType   enums.PlanType
	duration   plans.Duration
	amount     decimal.Decimal
	selection  *plans.Selection
	projection plans.Projection
	record     *records.PlanRecord
	lastErr    error
}

// New starts a workflow in Editing with the default three month plan.
func New(params Params) (*Workflow, error) {
	if params.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("owner id is required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	w := &Workflow{
		ownerID:     params.OwnerID,
		available:   append([]string(nil), params.AvailableDomains...),
		store:       params.Store,
		onCompleted: params.OnCompleted,
	}
	w.resetLocked()
	return w, nil
}

// State returns the current stage.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Input returns a copy of the current input.
func (w *Workflow) Input() PlanInput {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inputLocked()
}

// Projection returns the projection for the current input.
func (w *Workflow) Projection() plans.Projection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.projection
}

// Record returns the created record once Completed.
func (w *Workflow) Record() *records.PlanRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.record
}

// LastError is the error of the most recent failed submission, if any.
func (w *Workflow) LastError() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// SetDuration switches tiers and trims the domain selection to the new cap.
func (w *Workflow) SetDuration(d plans.Duration) (plans.Projection, error) {
	return w.edit(func() error {
		projection, err := plans.ComputeProjection(d, w.amount)
		if err != nil {
			return err
		}
		w.duration = d
		w.selection.SetCap(plans.MaxDomainsFor(d, len(w.available)))
		w.projection = projection
		return nil
	})
}

// SetDailyAmount changes the contribution. Out of range amounts are rejected
// and leave the input unchanged.
func (w *Workflow) SetDailyAmount(amount decimal.Decimal) (plans.Projection, error) {
	return w.edit(func() error {
		projection, err := plans.ComputeProjection(w.duration, amount)
		if err != nil {
			return err
		}
		w.amount = amount
		w.projection = projection
		return nil
	})
}

// ToggleDomain applies the picker semantics: remove when selected, add when
// under the cap, otherwise evict the oldest pick.
func (w *Workflow) ToggleDomain(domain string) (plans.Projection, error) {
	return w.edit(func() error {
		if !w.selection.Contains(domain) && !plans.ContainsDomain(w.available, domain) {
			return &plans.DomainSelectionError{Duration: w.duration, Reason: "unknown domain", Domains: []string{domain}}
		}
		w.selection.Toggle(domain)
		return nil
	})
}

// SetDomains replaces the selection in one step. Unlike ToggleDomain nothing
// is evicted: a list over the cap is rejected.
func (w *Workflow) SetDomains(domains []string) (plans.Projection, error) {
	return w.edit(func() error {
		if len(domains) > 0 {
			if err := plans.ValidateSelection(w.duration, domains, w.available); err != nil {
				return err
			}
		}
		w.selection.Clear()
		for _, domain := range domains {
			w.selection.Toggle(domain)
		}
		return nil
	})
}

// SetCourse picks the course the plan pays for.
func (w *Workflow) SetCourse(courseID uuid.UUID) (plans.Projection, error) {
	return w.edit(func() error {
		w.courseID = courseID
		return nil
	})
}

// SetType picks between a daily plan and a full purchase.
func (w *Workflow) SetType(planType enums.PlanType) (plans.Projection, error) {
	return w.edit(func() error {
		if !planType.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid plan type %q", planType)
		}
		w.planType = planType
		return nil
	})
}

// Submit validates the selection and hands the plan to the record store
// exactly once. Validation failures return to Editing with nothing persisted.
// Store failures pass through Failed back to Editing with the input intact.
func (w *Workflow) Submit(ctx context.Context) (*records.PlanRecord, error) {
	w.mu.Lock()
	if err := w.ensureEditableLocked(); err != nil {
		w.mu.Unlock()
		return nil, err
	}

	w.state = StateValidating
	if err := w.validateLocked(); err != nil {
		w.state = StateEditing
		w.mu.Unlock()
		return nil, err
	}

	w.state = StateSubmitting
	input := w.inputLocked()
	snapshot := w.projection
	w.mu.Unlock()

	record, err := w.store.CreatePlanRecord(ctx, records.CreateInput{
		OwnerID:         w.ownerID,
		CourseID:        input.CourseID,
		Type:            input.Type,
		Duration:        input.Duration,
		DailyAmount:     input.DailyAmount,
		SelectedDomains: input.Domains,
		Snapshot:        &snapshot,
	})

	w.mu.Lock()
	if err != nil {
		w.state = StateFailed
		w.lastErr = err
		w.state = StateEditing
		w.mu.Unlock()
		return nil, fmt.Errorf("submit plan: %w", err)
	}
	w.state = StateCompleted
	w.record = record
	w.lastErr = nil
	w.mu.Unlock()

	if w.onCompleted != nil {
		w.onCompleted(ctx, w.ownerID)
	}
	return record, nil
}

// Reset abandons the plan and starts over. It is refused mid-submission.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSubmitting || w.state == StateValidating {
		return ErrSubmissionInFlight
	}
	w.resetLocked()
	return nil
}

func (w *Workflow) edit(apply func() error) (plans.Projection, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureEditableLocked(); err != nil {
		return w.projection, err
	}
	if err := apply(); err != nil {
		return w.projection, err
	}
	return w.projection, nil
}

func (w *Workflow) ensureEditableLocked() error {
	switch w.state {
	case StateValidating, StateSubmitting:
		return ErrSubmissionInFlight
	case StateCompleted:
		return ErrAlreadyCompleted
	}
	return nil
}

func (w *Workflow) validateLocked() error {
	if w.courseID == uuid.Nil {
		return ErrCourseRequired
	}
	if _, err := plans.ComputeProjection(w.duration, w.amount); err != nil {
		return err
	}
	return plans.ValidateSelection(w.duration, w.selection.Domains(), w.available)
}

func (w *Workflow) inputLocked() PlanInput {
	return PlanInput{
		CourseID:    w.courseID,
		Type:        w.planType,
		Duration:    w.duration,
		DailyAmount: w.amount,
		Domains:     w.selection.Domains(),
	}
}

func (w *Workflow) resetLocked() {
	w.state = StateEditing
	w.courseID = uuid.Nil
	w.planType = enums.PlanTypeSIP
	w.duration = defaultDuration
	w.amount = defaultDailyAmount
	w.selection = plans.NewSelection(plans.MaxDomainsFor(defaultDuration, len(w.available)))
	w.projection, _ = plans.ComputeProjection(defaultDuration, defaultDailyAmount)
	w.record = nil
	w.lastErr = nil
}

// IsDomainError reports whether err is a recoverable domain selection error.
func IsDomainError(err error) bool {
	var selectionErr *plans.DomainSelectionError
	var emptyErr *plans.EmptyDomainSelectionError
	return errors.As(err, &selectionErr) || errors.As(err, &emptyErr)
}
