package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/kuafsurvey/internal/survey"
)

var (
	insertResponse       = buildInsertResponse(false)
	insertResponseUnique = buildInsertResponse(true)
	selectResponses      = buildSelectResponses()
)

func responseColumns() []string {
	return append([]string{"user_id"}, survey.RecordFields...)
}

func buildInsertResponse(unique bool) string {
	cols := responseColumns()
	params := make([]string, len(cols))
	for i, c := range cols {
		params[i] = ":" + c
	}
	head := "INSERT INTO survey_responses (" + strings.Join(cols, ", ") + ") "
	if !unique {
		return head + "VALUES (" + strings.Join(params, ", ") + ")"
	}
	params[0] = "CAST(:user_id AS BIGINT)"
	return head + "SELECT " + strings.Join(params, ", ") +
		" WHERE NOT EXISTS (SELECT 1 FROM survey_responses WHERE unique_id = :unique_id)"
}

// ResponseRow is a stored response joined with its student.
type ResponseRow struct {
	survey.Record
	TalabaID        string    `db:"talaba_id"`
	Gender          string    `db:"gender"`
	BirthDate       string    `db:"birth_date"`
	Passport        string    `db:"passport"`
	JSHSHIR         string    `db:"jshshir"`
	Citizenship     string    `db:"citizenship"`
	Region          string    `db:"region"`
	District        string    `db:"district"`
	Course          string    `db:"course"`
	Faculty         string    `db:"faculty"`
	Specialty       string    `db:"specialty"`
	EducationType   string    `db:"education_type"`
	EducationForm   string    `db:"education_form"`
	PaymentType     string    `db:"payment_type"`
	GrantType       string    `db:"grant_type"`
	StudentCategory string    `db:"student_category"`
	SocialCategory  string    `db:"social_category"`
	CreatedAt       time.Time `db:"created_at"`
}

var responseStudentColumns = []string{
	"talaba_id", "gender", "birth_date", "passport", "jshshir", "citizenship", "region",
	"district", "course", "faculty", "specialty", "education_type", "education_form",
	"payment_type", "grant_type", "student_category", "social_category",
}

func buildSelectResponses() string {
	var cols []string
	for _, c := range responseColumns() {
		cols = append(cols, "sr."+c)
	}
	for _, c := range responseStudentColumns {
		cols = append(cols, fmt.Sprintf("COALESCE(s.%s, '') AS %s", c, c))
	}
	cols = append(cols, "sr.created_at")
	return "SELECT " + strings.Join(cols, ", ") +
		" FROM survey_responses sr LEFT JOIN students s ON s.unique_id = sr.unique_id" +
		" ORDER BY sr.created_at DESC, sr.id DESC"
}

// InsertSurvey stores a completed record. With duplicates rejected, a second
// record for the same subject yields ErrDuplicate.
func (s *Store) InsertSurvey(ctx context.Context, rec survey.Record) (err error) {
	defer s.track(ctx, "insert_survey", time.Now(), &err)
	if !s.rejectDup {
		if _, err = s.db.NamedExecContext(ctx, insertResponse, rec); err != nil {
			return fmt.Errorf("insert survey: %w", err)
		}
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert survey: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", rec.UniqueID); err != nil {
		return fmt.Errorf("insert survey: lock: %w", err)
	}
	res, err := tx.NamedExecContext(ctx, insertResponseUnique, rec)
	if err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}
	if rowsAffected(res) == 0 {
		err = ErrDuplicate
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("insert survey: commit: %w", err)
	}
	return nil
}

// HasResponse reports whether the subject already submitted a record.
func (s *Store) HasResponse(ctx context.Context, uniqueID string) (ok bool, err error) {
	defer s.track(ctx, "has_response", time.Now(), &err)
	err = s.db.GetContext(ctx, &ok,
		"SELECT EXISTS (SELECT 1 FROM survey_responses WHERE unique_id = $1)", uniqueID)
	if err != nil {
		return false, fmt.Errorf("has response: %w", err)
	}
	return ok, nil
}

// ListResponses returns all responses, newest first.
func (s *Store) ListResponses(ctx context.Context) (out []ResponseRow, err error) {
	defer s.track(ctx, "list_responses", time.Now(), &err)
	if err = s.db.SelectContext(ctx, &out, selectResponses); err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	return out, nil
}

// ClearSurveys deletes every response and returns how many were removed.
func (s *Store) ClearSurveys(ctx context.Context) (n int, err error) {
	defer s.track(ctx, "clear_surveys", time.Now(), &err)
	res, err := s.db.ExecContext(ctx, "DELETE FROM survey_responses")
	if err != nil {
		return 0, fmt.Errorf("clear surveys: %w", err)
	}
	return rowsAffected(res), nil
}

// SurveyUserIDs lists the Telegram users that submitted at least one response.
func (s *Store) SurveyUserIDs(ctx context.Context) (ids []int64, err error) {
	defer s.track(ctx, "survey_user_ids", time.Now(), &err)
	if err = s.db.SelectContext(ctx, &ids, "SELECT DISTINCT user_id FROM survey_responses ORDER BY user_id"); err != nil {
		return nil, fmt.Errorf("survey user ids: %w", err)
	}
	return ids, nil
}
