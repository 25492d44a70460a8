package store

import (
	"context"

	m "github.com/tordrt/schoolschema/model"
)

func messageFields(msg *m.Message) []field {
	return []field{
		{"sender_id", msg.SenderID, &msg.SenderID},
		{"recipient_id", msg.RecipientID, &msg.RecipientID},
		{"subject", msg.Subject, &msg.Subject},
		{"content", msg.Content, &msg.Content},
		{"is_read", msg.IsRead, &msg.IsRead},
		{"read_at", msg.ReadAt, &msg.ReadAt},
		{"priority", string(msg.Priority), &msg.Priority},
		{"category", string(msg.Category), &msg.Category},
		{"created_at", msg.CreatedAt, &msg.CreatedAt},
		{"updated_at", msg.UpdatedAt, &msg.UpdatedAt},
	}
}

// CreateMessage inserts msg unread and sets its ID. Priority defaults to
// normal and category to general.
func (s *Store) CreateMessage(ctx context.Context, msg *m.Message) error {
	if msg.Priority == "" {
		msg.Priority = m.PriorityNormal
	}
	if msg.Category == "" {
		msg.Category = m.CategoryGeneral
	}
	if err := s.check(m.TableMessages, msg); err != nil {
		return err
	}
	msg.IsRead, msg.ReadAt = false, nil
	s.touch(&msg.Timestamps)

	id, err := s.insert(ctx, s.db, m.TableMessages, messageFields(msg))
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// GetMessage returns the message with the given id
func (s *Store) GetMessage(ctx context.Context, id int64) (*m.Message, error) {
	msg := &m.Message{ID: id}
	if err := s.get(ctx, s.db, m.TableMessages, id, messageFields(msg)); err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkMessageRead flags a message as read. The first read time is kept.
func (s *Store) MarkMessageRead(ctx context.Context, id int64) (*m.Message, error) {
	msg, err := s.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.IsRead {
		return msg, nil
	}

	now := s.stamp()
	if err := s.update(ctx, s.db, m.TableMessages, id, []field{
		{col: "is_read", val: true},
		{col: "read_at", val: now},
	}); err != nil {
		return nil, err
	}
	msg.IsRead, msg.ReadAt, msg.UpdatedAt = true, &now, now
	return msg, nil
}

// DeleteMessage removes a message
func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableMessages, id)
}
