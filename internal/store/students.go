package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/kuafsurvey/internal/survey"
)

// Student is one imported student. Empty strings stand for missing values.
type Student struct {
	ID                int64     `db:"id"`
	UniqueID          string    `db:"unique_id"`
	TalabaID          string    `db:"talaba_id"`
	Fullname          string    `db:"fullname"`
	Citizenship       string    `db:"citizenship"`
	Country           string    `db:"country"`
	Nationality       string    `db:"nationality"`
	Region            string    `db:"region"`
	District          string    `db:"district"`
	Gender            string    `db:"gender"`
	BirthDate         string    `db:"birth_date"`
	Passport          string    `db:"passport"`
	JSHSHIR           string    `db:"jshshir"`
	PassportDate      string    `db:"passport_date"`
	Course            string    `db:"course"`
	Faculty           string    `db:"faculty"`
	GroupName         string    `db:"group_name"`
	Language          string    `db:"language"`
	StudyYear         string    `db:"study_year"`
	Semester          string    `db:"semester"`
	Graduate          string    `db:"graduate"`
	Specialty         string    `db:"specialty"`
	EducationType     string    `db:"education_type"`
	EducationForm     string    `db:"education_form"`
	PaymentType       string    `db:"payment_type"`
	GrantType         string    `db:"grant_type"`
	PreviousEducation string    `db:"previous_education"`
	StudentCategory   string    `db:"student_category"`
	SocialCategory    string    `db:"social_category"`
	FamilyMembers     string    `db:"family_members"`
	Phone             string    `db:"phone"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

// Subject projects the fields a survey session binds.
func (s Student) Subject() survey.Subject {
	return survey.Subject{
		UniqueID:  s.UniqueID,
		Fullname:  s.Fullname,
		GroupName: s.GroupName,
		Phone:     s.Phone,
	}
}

// studentColumns are the nullable text columns after unique_id and fullname.
var studentColumns = []string{
	"talaba_id", "citizenship", "country", "nationality", "region", "district", "gender",
	"birth_date", "passport", "jshshir", "passport_date", "course", "faculty", "group_name",
	"language", "study_year", "semester", "graduate", "specialty", "education_type",
	"education_form", "payment_type", "grant_type", "previous_education", "student_category",
	"social_category", "family_members", "phone",
}

var (
	selectStudent = buildSelectStudent()
	insertStudent = buildInsertStudent()
	updateStudent = buildUpdateStudent()
)

func buildSelectStudent() string {
	cols := []string{"id", "unique_id", "fullname"}
	for _, c := range studentColumns {
		cols = append(cols, fmt.Sprintf("COALESCE(%s, '') AS %s", c, c))
	}
	cols = append(cols, "created_at", "updated_at")
	return "SELECT " + strings.Join(cols, ", ") + " FROM students"
}

func buildInsertStudent() string {
	cols := []string{"unique_id", "fullname"}
	vals := []string{":unique_id", ":fullname"}
	for _, c := range studentColumns {
		cols = append(cols, c)
		vals = append(vals, fmt.Sprintf("NULLIF(:%s, '')", c))
	}
	return "INSERT INTO students (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(vals, ", ") + ")"
}

// buildUpdateStudent keeps stored values wherever the incoming one is empty.
func buildUpdateStudent() string {
	sets := []string{"fullname = COALESCE(NULLIF(:fullname, ''), fullname)"}
	for _, c := range studentColumns {
		sets = append(sets, fmt.Sprintf("%s = COALESCE(NULLIF(:%s, ''), %s)", c, c, c))
	}
	sets = append(sets, "updated_at = now()")
	return "UPDATE students SET " + strings.Join(sets, ", ") + " WHERE id = :id"
}

func subjectQuery(q survey.Query) (string, []any, error) {
	var where string
	switch q.Kind {
	case survey.QueryNationalID:
		where = "jshshir = $1"
	case survey.QueryStudentID:
		where = "talaba_id = $1"
	case survey.QueryIDOrStudentID:
		where = "unique_id = $1 OR talaba_id = $1"
	case survey.QueryPassport:
		where = "UPPER(passport) = $1"
	default:
		return "", nil, fmt.Errorf("find subject: unsupported query kind %s", q.Kind)
	}
	return selectStudent + " WHERE " + where + " ORDER BY id LIMIT 1", []any{q.Value}, nil
}

// FindSubject resolves a classified search query to a student.
func (s *Store) FindSubject(ctx context.Context, q survey.Query) (st Student, err error) {
	defer s.track(ctx, "find_subject", time.Now(), &err)
	query, args, err := subjectQuery(q)
	if err != nil {
		return Student{}, err
	}
	err = s.db.GetContext(ctx, &st, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	if err != nil {
		return Student{}, fmt.Errorf("find subject: %w", err)
	}
	return st, nil
}

// ListStudents returns every student in import order.
func (s *Store) ListStudents(ctx context.Context) (out []Student, err error) {
	defer s.track(ctx, "list_students", time.Now(), &err)
	if err = s.db.SelectContext(ctx, &out, selectStudent+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return out, nil
}

// UpsertAction tells whether UpsertStudent inserted or updated.
type UpsertAction string

const (
	ActionAdded   UpsertAction = "added"
	ActionUpdated UpsertAction = "updated"
)

// UpsertResult reports the affected student.
type UpsertResult struct {
	Action   UpsertAction
	UniqueID string
}

// studentsLock serializes unique id allocation across concurrent imports.
const studentsLock = 0x6b756166

// UpsertStudent matches an existing student by passport, then national id,
// then student id. A match is updated field by field, keeping stored values
// where the input is empty. Otherwise a new student gets the next numeric
// unique id.
func (s *Store) UpsertStudent(ctx context.Context, in Student) (res UpsertResult, err error) {
	defer s.track(ctx, "upsert_student", time.Now(), &err)
	if strings.TrimSpace(in.Fullname) == "" {
		return UpsertResult{}, fmt.Errorf("upsert student: fullname is required")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert student: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", studentsLock); err != nil {
		return UpsertResult{}, fmt.Errorf("upsert student: lock: %w", err)
	}

	var existing struct {
		ID       int64  `db:"id"`
		UniqueID string `db:"unique_id"`
	}
	found := false
	for _, m := range []struct{ col, val string }{
		{"passport", in.Passport},
		{"jshshir", in.JSHSHIR},
		{"talaba_id", in.TalabaID},
	} {
		if m.val == "" {
			continue
		}
		err = tx.GetContext(ctx, &existing,
			"SELECT id, unique_id FROM students WHERE "+m.col+" = $1 ORDER BY id LIMIT 1", m.val)
		if err == nil {
			found = true
			break
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return UpsertResult{}, fmt.Errorf("upsert student: match %s: %w", m.col, err)
		}
		err = nil
	}

	if found {
		in.ID = existing.ID
		if _, err = tx.NamedExecContext(ctx, updateStudent, in); err != nil {
			return UpsertResult{}, fmt.Errorf("upsert student: update: %w", err)
		}
		res = UpsertResult{Action: ActionUpdated, UniqueID: existing.UniqueID}
	} else {
		var next int64
		err = tx.GetContext(ctx, &next,
			`SELECT COALESCE(MAX(CAST(unique_id AS BIGINT)), 0) + 1 FROM students WHERE unique_id ~ '^[0-9]+$'`)
		if err != nil {
			return UpsertResult{}, fmt.Errorf("upsert student: next id: %w", err)
		}
		in.UniqueID = fmt.Sprint(next)
		if _, err = tx.NamedExecContext(ctx, insertStudent, in); err != nil {
			return UpsertResult{}, fmt.Errorf("upsert student: insert: %w", err)
		}
		res = UpsertResult{Action: ActionAdded, UniqueID: in.UniqueID}
	}

	if err = tx.Commit(); err != nil {
		return UpsertResult{}, fmt.Errorf("upsert student: commit: %w", err)
	}
	return res, nil
}
