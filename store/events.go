package store

import (
	"context"
	"database/sql"

	"github.com/tordrt/schoolschema/dberr"
	"github.com/tordrt/schoolschema/internal/ddl"
	m "github.com/tordrt/schoolschema/model"
)

func eventFields(e *m.Event) []field {
	return []field{
		{"title", e.Title, &e.Title},
		{"description", e.Description, &e.Description},
		{"type", string(e.Type), &e.Type},
		{"start_date", e.StartDate.UTC(), &e.StartDate},
		{"end_date", e.EndDate.UTC(), &e.EndDate},
		{"location", e.Location, &e.Location},
		{"organizer_id", e.OrganizerID, &e.OrganizerID},
		{"target_audience", string(e.TargetAudience), &e.TargetAudience},
		{"status", string(e.Status), &e.Status},
		{"is_public", e.IsPublic, &e.IsPublic},
		{"max_participants", e.MaxParticipants, &e.MaxParticipants},
		{"created_at", e.CreatedAt, &e.CreatedAt},
		{"updated_at", e.UpdatedAt, &e.UpdatedAt},
	}
}

// CreateEvent inserts e with its participants and levels, in order, and
// sets its ID. Audience defaults to all and status to scheduled. An event
// that ends before it starts is rejected.
func (s *Store) CreateEvent(ctx context.Context, e *m.Event) error {
	if e.TargetAudience == "" {
		e.TargetAudience = m.AudienceAll
	}
	if e.Status == "" {
		e.Status = m.EventScheduled
	}
	if err := s.check(m.TableEvents, e); err != nil {
		return err
	}
	if e.EndDate.Before(e.StartDate) {
		return &dberr.ConstraintViolation{
			Kind:   dberr.KindRange,
			Table:  m.TableEvents,
			Column: "end_date",
			Value:  e.EndDate.UTC().Format("2006-01-02 15:04:05"),
			Detail: "must not be before start_date",
		}
	}
	if e.MaxParticipants != nil && len(e.Participants) > *e.MaxParticipants {
		return &dberr.ConstraintViolation{
			Kind:   dberr.KindRange,
			Table:  m.TableEventParticipants,
			Column: "user_id",
			Value:  len(e.Participants),
			Detail: "more participants than max_participants",
		}
	}
	s.touch(&e.Timestamps)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		id, err := s.insert(ctx, tx, m.TableEvents, eventFields(e))
		if err != nil {
			return err
		}
		for i, userID := range e.Participants {
			if _, err := s.insert(ctx, tx, m.TableEventParticipants, []field{
				{col: "event_id", val: id},
				{col: "user_id", val: userID},
				{col: "position", val: i},
				{col: "created_at", val: e.CreatedAt},
				{col: "updated_at", val: e.UpdatedAt},
			}); err != nil {
				return err
			}
		}
		for i, level := range e.Levels {
			if _, err := s.insert(ctx, tx, m.TableEventLevels, []field{
				{col: "event_id", val: id},
				{col: "position", val: i},
				{col: "level", val: level},
				{col: "created_at", val: e.CreatedAt},
				{col: "updated_at", val: e.UpdatedAt},
			}); err != nil {
				return err
			}
		}
		e.ID = id
		return nil
	})
}

// GetEvent returns the event with its participants and levels in their
// original order
func (s *Store) GetEvent(ctx context.Context, id int64) (*m.Event, error) {
	e := &m.Event{ID: id}
	if err := s.get(ctx, s.db, m.TableEvents, id, eventFields(e)); err != nil {
		return nil, err
	}

	var err error
	e.Participants, err = queryList[int64](ctx, s.db, ddl.Rebind(s.dialect,
		"SELECT user_id FROM event_participants WHERE event_id = ? ORDER BY position, id"), id)
	if err != nil {
		return nil, err
	}
	e.Levels, err = queryList[string](ctx, s.db, ddl.Rebind(s.dialect,
		"SELECT level FROM event_levels WHERE event_id = ? ORDER BY position, id"), id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// SetEventStatus moves an event to status
func (s *Store) SetEventStatus(ctx context.Context, id int64, status m.EventStatus) error {
	if err := s.enumValue(m.TableEvents, "status", string(status), status.Valid()); err != nil {
		return err
	}
	return s.update(ctx, s.db, m.TableEvents, id, []field{{col: "status", val: string(status)}})
}

// DeleteEvent removes an event with its participants and levels
func (s *Store) DeleteEvent(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableEvents, id)
}
