package store

import (
	"context"

	"go.uber.org/zap"

	m "github.com/tordrt/schoolschema/model"
)

func userFields(u *m.User) []field {
	return []field{
		{"name", u.Name, &u.Name},
		{"email", u.Email, &u.Email},
		{"role", string(u.Role), &u.Role},
		{"phone", u.Phone, &u.Phone},
		{"created_at", u.CreatedAt, &u.CreatedAt},
		{"updated_at", u.UpdatedAt, &u.UpdatedAt},
	}
}

// CreateUser inserts u and sets its ID. Role defaults to student.
func (s *Store) CreateUser(ctx context.Context, u *m.User) error {
	if u.Role == "" {
		u.Role = m.RoleStudent
	}
	if err := s.check(m.TableUsers, u); err != nil {
		return err
	}
	s.touch(&u.Timestamps)

	id, err := s.insert(ctx, s.db, m.TableUsers, userFields(u))
	if err != nil {
		return err
	}
	u.ID = id
	s.logger.Debug("user created", zap.Int64("id", id))
	return nil
}

// GetUser returns the user with the given id
func (s *Store) GetUser(ctx context.Context, id int64) (*m.User, error) {
	u := &m.User{ID: id}
	if err := s.get(ctx, s.db, m.TableUsers, id, userFields(u)); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteUser removes a user together with their student, teacher and
// parent profiles, messages and event participations. Events they
// organized keep existing without an organizer.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableUsers, id)
}

func studentFields(st *m.Student) []field {
	return []field{
		{"user_id", st.UserID, &st.UserID},
		{"student_number", st.StudentNumber, &st.StudentNumber},
		{"level", st.Level, &st.Level},
		{"class_name", st.ClassName, &st.ClassName},
		{"date_of_birth", dateOnlyPtr(st.DateOfBirth), &st.DateOfBirth},
		{"status", string(st.Status), &st.Status},
		{"created_at", st.CreatedAt, &st.CreatedAt},
		{"updated_at", st.UpdatedAt, &st.UpdatedAt},
	}
}

// CreateStudent inserts st and sets its ID. Status defaults to active.
func (s *Store) CreateStudent(ctx context.Context, st *m.Student) error {
	if st.Status == "" {
		st.Status = m.StudentActive
	}
	if err := s.check(m.TableStudents, st); err != nil {
		return err
	}
	s.touch(&st.Timestamps)

	id, err := s.insert(ctx, s.db, m.TableStudents, studentFields(st))
	if err != nil {
		return err
	}
	st.ID = id
	return nil
}

// GetStudent returns the student with the given id
func (s *Store) GetStudent(ctx context.Context, id int64) (*m.Student, error) {
	st := &m.Student{ID: id}
	if err := s.get(ctx, s.db, m.TableStudents, id, studentFields(st)); err != nil {
		return nil, err
	}
	return st, nil
}

// DeleteStudent removes a student with their grades, payments, cafeteria
// orders, enrollments and submissions
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableStudents, id)
}

func teacherFields(t *m.Teacher) []field {
	return []field{
		{"user_id", t.UserID, &t.UserID},
		{"employee_number", t.EmployeeNumber, &t.EmployeeNumber},
		{"subject", t.Subject, &t.Subject},
		{"hire_date", dateOnlyPtr(t.HireDate), &t.HireDate},
		{"status", string(t.Status), &t.Status},
		{"created_at", t.CreatedAt, &t.CreatedAt},
		{"updated_at", t.UpdatedAt, &t.UpdatedAt},
	}
}

// CreateTeacher inserts t and sets its ID. Status defaults to active.
func (s *Store) CreateTeacher(ctx context.Context, t *m.Teacher) error {
	if t.Status == "" {
		t.Status = m.StatusActive
	}
	if err := s.check(m.TableTeachers, t); err != nil {
		return err
	}
	s.touch(&t.Timestamps)

	id, err := s.insert(ctx, s.db, m.TableTeachers, teacherFields(t))
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// GetTeacher returns the teacher with the given id
func (s *Store) GetTeacher(ctx context.Context, id int64) (*m.Teacher, error) {
	t := &m.Teacher{ID: id}
	if err := s.get(ctx, s.db, m.TableTeachers, id, teacherFields(t)); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTeacher removes a teacher with their grades and assignments.
// Courses they taught are kept with no teacher.
func (s *Store) DeleteTeacher(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableTeachers, id)
}

func parentFields(p *m.Parent) []field {
	return []field{
		{"user_id", p.UserID, &p.UserID},
		{"relationship", string(p.Relationship), &p.Relationship},
		{"phone", p.Phone, &p.Phone},
		{"address", p.Address, &p.Address},
		{"city", p.City, &p.City},
		{"postal_code", p.PostalCode, &p.PostalCode},
		{"country", p.Country, &p.Country},
		{"occupation", p.Occupation, &p.Occupation},
		{"emergency_contact", p.EmergencyContact, &p.EmergencyContact},
		{"emergency_phone", p.EmergencyPhone, &p.EmergencyPhone},
		{"status", string(p.Status), &p.Status},
		{"created_at", p.CreatedAt, &p.CreatedAt},
		{"updated_at", p.UpdatedAt, &p.UpdatedAt},
	}
}

// CreateParent inserts p and sets its ID. Status defaults to active.
func (s *Store) CreateParent(ctx context.Context, p *m.Parent) error {
	if p.Status == "" {
		p.Status = m.StatusActive
	}
	if err := s.check(m.TableParents, p); err != nil {
		return err
	}
	s.touch(&p.Timestamps)

	id, err := s.insert(ctx, s.db, m.TableParents, parentFields(p))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// GetParent returns the parent with the given id
func (s *Store) GetParent(ctx context.Context, id int64) (*m.Parent, error) {
	p := &m.Parent{ID: id}
	if err := s.get(ctx, s.db, m.TableParents, id, parentFields(p)); err != nil {
		return nil, err
	}
	return p, nil
}

// DeleteParent removes a parent profile. The user is kept.
func (s *Store) DeleteParent(ctx context.Context, id int64) error {
	return s.remove(ctx, m.TableParents, id)
}
