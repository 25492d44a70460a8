package store

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/tordrt/schoolschema/internal/ddl"
	m "github.com/tordrt/schoolschema/model"
)

func assignmentFields(a *m.Assignment) []field {
	return []field{
		{"course_id", a.CourseID, &a.CourseID},
		{"teacher_id", a.TeacherID, &a.TeacherID},
		{"title", a.Title, &a.Title},
		{"description", a.Description, &a.Description},
		{"subject", a.Subject, &a.Subject},
		{"level", a.Level, &a.Level},
		{"class_name", a.ClassName, &a.ClassName},
		{"due_date", a.DueDate.UTC(), &a.DueDate},
		{"total_marks", a.TotalMarks, &a.TotalMarks},
		{"status", string(a.Status), &a.Status},
		{"created_at", a.CreatedAt, &a.CreatedAt},
		{"updated_at", a.UpdatedAt, &a.UpdatedAt},
	}
}

// CreateAssignment inserts a with its attachments and submissions, in
// order, and sets its ID. Status defaults to active and total marks to 100.
func (s *Store) CreateAssignment(ctx context.Context, a *m.Assignment) error {
	if a.Status == "" {
		a.Status = m.AssignmentActive
	}
	if a.TotalMarks == 0 {
		a.TotalMarks = 100
	}
	if err := s.check(m.TableAssignments, a); err != nil {
		return err
	}
	for _, sub := range a.Submissions {
		if sub.Marks == nil {
			continue
		}
		if err := s.checkDecimal(m.TableAssignmentSubmissions, "marks", *sub.Marks); err != nil {
			return err
		}
	}
	s.touch(&a.Timestamps)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		id, err := s.insert(ctx, tx, m.TableAssignments, assignmentFields(a))
		if err != nil {
			return err
		}
		for i, path := range a.Attachments {
			if _, err := s.insert(ctx, tx, m.TableAssignmentAttachments, []field{
				{col: "assignment_id", val: id},
				{col: "position", val: i},
				{col: "file_path", val: path},
				{col: "created_at", val: a.CreatedAt},
				{col: "updated_at", val: a.UpdatedAt},
			}); err != nil {
				return err
			}
		}
		for i := range a.Submissions {
			sub := &a.Submissions[i]
			if sub.SubmittedAt.IsZero() {
				sub.SubmittedAt = s.stamp()
			}
			if _, err := s.insert(ctx, tx, m.TableAssignmentSubmissions, []field{
				{col: "assignment_id", val: id},
				{col: "student_id", val: sub.StudentID},
				{col: "position", val: i},
				{col: "file_path", val: sub.FilePath},
				{col: "submitted_at", val: sub.SubmittedAt.UTC()},
				{col: "marks", val: nullableDecimal(sub.Marks)},
				{col: "created_at", val: a.CreatedAt},
				{col: "updated_at", val: a.UpdatedAt},
			}); err != nil {
				return err
			}
		}
		a.ID = id
		return nil
	})
}

// GetAssignment returns the assignment with its attachments and
// submissions in their original order
func (s *Store) GetAssignment(ctx context.Context, id int64) (*m.Assignment, error) {
	a := &m.Assignment{ID: id}
	if err := s.get(ctx, s.db, m.TableAssignments, id, assignmentFields(a)); err != nil {
		return nil, err
	}

	attachments, err := queryList[string](ctx, s.db, ddl.Rebind(s.dialect,
		"SELECT file_path FROM assignment_attachments WHERE assignment_id = ? ORDER BY position, id"), id)
	if err != nil {
		return nil, err
	}
	a.Attachments = attachments

	if a.Submissions, err = s.submissions(ctx, id); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) submissions(ctx context.Context, assignmentID int64) ([]m.Submission, error) {
	rows, err := s.db.QueryContext(ctx, ddl.Rebind(s.dialect, `
		SELECT student_id, file_path, submitted_at, marks
		FROM assignment_submissions
		WHERE assignment_id = ?
		ORDER BY position, id
	`), assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []m.Submission
	for rows.Next() {
		var sub m.Submission
		var marks decimal.NullDecimal
		if err := rows.Scan(&sub.StudentID, &sub.FilePath, &sub.SubmittedAt, &marks); err != nil {
			return nil, err
		}
		if marks.Valid {
			sub.Marks = &marks.Decimal
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SetAssignmentStatus moves an assignment to status
func (s *Store) SetAssignmentStatus(ctx context.Context, id int64, status m.AssignmentStatus) error {
	if err := s.enumValue(m.TableAssignments, "status", string(status), status.Valid()); err != nil {
		return err
	}
	return s.update(ctx, s.db, m.TableAssignments, id, []field{{col: "status", val: string(status)}})
}

// DeleteAssignment removes an assignment with its attachments and submissions
func (s *Store) DeleteAssignment(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableAssignments, id)
}
