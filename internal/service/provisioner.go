// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/evops/internal/cache"
	"github.com/olegiv/evops/internal/clock"
	"github.com/olegiv/evops/internal/saga"
	"github.com/olegiv/evops/internal/sequence"
	"github.com/olegiv/evops/internal/store"
	"github.com/olegiv/evops/internal/util"
)

// VenueInput is a venue as entered on the event form.
type VenueInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// ProvisionInput is the event form payload.
type ProvisionInput struct {
	Name             string
	Client           string
	Description      string
	EventTypeID      *int64
	SetupDate        time.Time
	EventDate        time.Time
	IsMultipleDays   bool
	CreatedBy        string
	PrimaryVenue     VenueInput
	AdditionalVenues []VenueInput
	AdditionalDates  []time.Time
}

// Provisioner creates an event with its venues and dates as one logical unit.
//
// Steps run in order: event, primary venue, additional venues, additional
// dates. A failed primary venue deletes the event again. Failures after the
// primary venue keep what was written and are reported as partial.
type Provisioner struct {
	store    Store
	ref      *cache.Reference
	issuer   *sequence.Issuer
	clock    clock.Clock
	logger   *slog.Logger
	notifier Notifier
	attempts int
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(s Store, ref *cache.Reference, opts Options) *Provisioner {
	opts = opts.withDefaults()
	return &Provisioner{
		store:    s,
		ref:      ref,
		issuer:   sequence.NewIssuer(s),
		clock:    opts.Clock,
		logger:   opts.Logger,
		notifier: opts.Notifier,
		attempts: opts.IssueAttempts,
	}
}

// PreviewJobID returns the job ID the next event would get today. An empty
// typeCode previews the XX placeholder form. Nothing is reserved.
func (p *Provisioner) PreviewJobID(ctx context.Context, typeCode string) (string, error) {
	typeCode = strings.ToUpper(strings.TrimSpace(typeCode))
	if typeCode != "" {
		if _, err := p.ref.EventTypeByCode(ctx, typeCode); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", &ValidationError{Fields: map[string]string{"event_type": "unknown event type"}}
			}
			return "", fmt.Errorf("loading event type %q: %w", typeCode, err)
		}
	}
	return p.issuer.NextJobID(ctx, p.clock.Now(), typeCode)
}

// Provision validates in and writes the event, its primary venue and the
// optional batches.
//
// Errors: *ValidationError before any write; *DependencyWriteError when the
// event row itself is rejected; *ProvisioningFailedError when the primary
// venue failed and the event was deleted; *CompensationFailedError when that
// delete failed too; *PartialProvisioningError when a later batch failed.
func (p *Provisioner) Provision(ctx context.Context, in ProvisionInput) (store.Event, error) {
	if err := ValidateProvision(in); err != nil {
		return store.Event{}, err
	}

	eventType, err := p.ref.EventTypeByID(ctx, *in.EventTypeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Event{}, &ValidationError{Fields: map[string]string{"event_type_id": "unknown event type"}}
		}
		return store.Event{}, fmt.Errorf("loading event type: %w", err)
	}

	logger := p.logger.With("attempt", uuid.NewString())
	now := p.clock.Now()

	var event store.Event
	s := saga.New("provision_event", logger).
		Then(saga.Step{
			Name: StepEvent,
			Do: func(ctx context.Context) error {
				var err error
				event, err = p.createEvent(ctx, logger, in, eventType, now)
				return err
			},
			Compensate: func(ctx context.Context) error {
				return p.store.DeleteEvent(ctx, event.ID)
			},
		}).
		Then(saga.Step{
			Name:  StepPrimaryVenue,
			Pivot: true,
			Do: func(ctx context.Context) error {
				_, err := p.store.CreateVenue(ctx, store.CreateVenueParams{
					EventID:    event.ID,
					Name:       strings.TrimSpace(in.PrimaryVenue.Name),
					Address:    strings.TrimSpace(in.PrimaryVenue.Address),
					VenueOrder: 1,
					CreatedAt:  now,
				})
				return err
			},
		})

	if len(in.AdditionalVenues) > 0 {
		s.Then(saga.Step{
			Name: StepAdditionalVenues,
			Do: func(ctx context.Context) error {
				return p.store.CreateVenues(ctx, venueParams(event.ID, in.AdditionalVenues, 2, now))
			},
		})
	}
	if in.IsMultipleDays && len(in.AdditionalDates) > 0 {
		s.Then(saga.Step{
			Name: StepAdditionalDates,
			Do: func(ctx context.Context) error {
				return p.store.CreateEventDates(ctx, dateParams(event.ID, in.AdditionalDates, 2, now))
			},
		})
	}

	if err := s.Run(ctx); err != nil {
		return p.provisionError(ctx, logger, event, err)
	}

	logger.Info("event provisioned", "job_id", event.JobID, "event_id", event.ID,
		"venues", 1+len(in.AdditionalVenues), "additional_dates", len(in.AdditionalDates))
	p.notifier.Publish(ctx, EventProvisioned, event)
	return event, nil
}

// createEvent inserts the event row, deriving a fresh job ID for each attempt
// the store rejects as a duplicate.
func (p *Provisioner) createEvent(ctx context.Context, logger *slog.Logger, in ProvisionInput, eventType store.EventType, now time.Time) (store.Event, error) {
	var lastErr error
	for attempt := 1; attempt <= p.attempts; attempt++ {
		jobID, err := p.issuer.NextJobID(ctx, now, eventType.Code)
		if err != nil {
			return store.Event{}, err
		}

		event, err := p.store.CreateEvent(ctx, store.CreateEventParams{
			JobID:          jobID,
			Name:           strings.TrimSpace(in.Name),
			Client:         strings.TrimSpace(in.Client),
			Description:    in.Description,
			EventTypeID:    util.NullInt64FromPtr(in.EventTypeID),
			SetupDate:      dateOnly(in.SetupDate),
			EventDate:      dateOnly(in.EventDate),
			IsMultipleDays: in.IsMultipleDays,
			CreatedBy:      in.CreatedBy,
			CreatedAt:      now,
		})
		if err == nil {
			return event, nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return store.Event{}, err
		}
		logger.Info("job id taken, deriving a new one", "job_id", jobID, "attempt", attempt)
		lastErr = err
	}
	return store.Event{}, fmt.Errorf("no free job id after %d attempts: %w", p.attempts, lastErr)
}

func (p *Provisioner) provisionError(ctx context.Context, logger *slog.Logger, event store.Event, err error) (store.Event, error) {
	var compErr *saga.CompensationError
	if errors.As(err, &compErr) {
		logger.Error("event rollback failed, orphaned event remains",
			"job_id", event.JobID, "event_id", event.ID, "step", compErr.Step,
			"error", compErr.Err, "compensation_error", compErr.CompensationErr)
		return store.Event{}, &CompensationFailedError{
			Original:          &DependencyWriteError{Step: compErr.Step, Err: compErr.Err},
			CompensationCause: compErr.CompensationErr,
		}
	}

	var stepErr *saga.StepError
	if !errors.As(err, &stepErr) {
		return store.Event{}, err
	}
	writeErr := &DependencyWriteError{Step: stepErr.Step, Err: stepErr.Err}

	switch {
	case stepErr.Committed:
		logger.Warn("event partially provisioned",
			"job_id", event.JobID, "event_id", event.ID,
			"completed", stepErr.Completed, "failed_step", stepErr.Step, "error", stepErr.Err)
		p.notifier.Publish(ctx, EventPartiallyProvisioned, map[string]any{
			"event":       event,
			"completed":   stepErr.Completed,
			"failed_step": stepErr.Step,
		})
		return event, &PartialProvisioningError{Event: event, Completed: stepErr.Completed, Err: writeErr}
	case len(stepErr.Compensated) > 0:
		logger.Warn("event provisioning rolled back",
			"job_id", event.JobID, "step", stepErr.Step, "error", stepErr.Err)
		return store.Event{}, &ProvisioningFailedError{JobID: event.JobID, Cause: writeErr}
	default:
		return store.Event{}, writeErr
	}
}

// AddVenues appends venues to an existing event, continuing its venue order.
// It resumes a provisioning whose additional venues failed.
func (p *Provisioner) AddVenues(ctx context.Context, eventID int64, venues []VenueInput) ([]store.Venue, error) {
	v := validationErrors{}
	if len(venues) == 0 {
		v.add("venues", "at least one venue is required")
	}
	for i, venue := range venues {
		validateVenue(v, fmt.Sprintf("venues[%d]", i), venue)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	event, err := p.store.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, lookupError(err, "event", eventID)
	}

	count, err := p.store.CountVenuesByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("counting venues: %w", err)
	}

	if err := p.store.CreateVenues(ctx, venueParams(eventID, venues, count+1, p.clock.Now())); err != nil {
		return nil, &DependencyWriteError{Step: StepAdditionalVenues, Err: err}
	}
	p.logger.Info("venues added", "job_id", event.JobID, "count", len(venues))

	return p.store.ListVenuesByEvent(ctx, eventID)
}

// AddDates appends additional dates to a multi-day event. The new dates must
// continue the stored chronological chain.
func (p *Provisioner) AddDates(ctx context.Context, eventID int64, dates []time.Time) ([]store.EventDate, error) {
	if len(dates) == 0 {
		return nil, &ValidationError{Fields: map[string]string{"dates": "at least one date is required"}}
	}

	event, err := p.store.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, lookupError(err, "event", eventID)
	}
	if !event.IsMultipleDays {
		return nil, &ValidationError{Fields: map[string]string{"dates": "event is not a multi-day event"}}
	}

	existing, err := p.store.ListEventDatesByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("listing event dates: %w", err)
	}

	prev, prevName := dateOnly(event.EventDate), "event date"
	if n := len(existing); n > 0 {
		prev, prevName = dateOnly(existing[n-1].EventDate), "last stored date"
	}
	v := validationErrors{}
	validateDateChain(v, prev, prevName, dates, len(existing))
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := p.store.CreateEventDates(ctx, dateParams(eventID, dates, int64(len(existing))+2, p.clock.Now())); err != nil {
		return nil, &DependencyWriteError{Step: StepAdditionalDates, Err: err}
	}
	p.logger.Info("event dates added", "job_id", event.JobID, "count", len(dates))

	return p.store.ListEventDatesByEvent(ctx, eventID)
}

func venueParams(eventID int64, venues []VenueInput, firstOrder int64, now time.Time) []store.CreateVenueParams {
	params := make([]store.CreateVenueParams, len(venues))
	for i, v := range venues {
		params[i] = store.CreateVenueParams{
			EventID:    eventID,
			Name:       strings.TrimSpace(v.Name),
			Address:    strings.TrimSpace(v.Address),
			VenueOrder: firstOrder + int64(i),
			CreatedAt:  now,
		}
	}
	return params
}

func dateParams(eventID int64, dates []time.Time, firstOrder int64, now time.Time) []store.CreateEventDateParams {
	params := make([]store.CreateEventDateParams, len(dates))
	for i, d := range dates {
		params[i] = store.CreateEventDateParams{
			EventID:   eventID,
			EventDate: dateOnly(d),
			DateOrder: firstOrder + int64(i),
			CreatedAt: now,
		}
	}
	return params
}
