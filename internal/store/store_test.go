package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/kuafsurvey/internal/survey"
)

func TestSubjectQueryByKind(t *testing.T) {
	cases := []struct {
		raw   string
		where string
	}{
		{"12345678901234", "WHERE jshshir = $1"},
		{"123456789012", "WHERE talaba_id = $1"},
		{"42", "WHERE unique_id = $1 OR talaba_id = $1"},
		{" ab1234567 ", "WHERE UPPER(passport) = $1"},
	}
	for _, tc := range cases {
		q := survey.ClassifyQuery(tc.raw)
		sql, args, err := subjectQuery(q)
		require.NoError(t, err, tc.raw)
		assert.Contains(t, sql, tc.where, tc.raw)
		assert.True(t, strings.HasSuffix(sql, "ORDER BY id LIMIT 1"))
		assert.Equal(t, []any{q.Value}, args)
	}

	if _, _, err := subjectQuery(survey.Query{Value: "x"}); err == nil {
		t.Fatalf("expected error for unknown query kind")
	}
}

func TestStudentStatements(t *testing.T) {
	assert.Contains(t, selectStudent, "COALESCE(jshshir, '') AS jshshir")
	assert.Contains(t, insertStudent, "NULLIF(:phone, '')")
	assert.Contains(t, updateStudent, "group_name = COALESCE(NULLIF(:group_name, ''), group_name)")
	assert.NotContains(t, updateStudent, "unique_id =")
	assert.True(t, strings.HasSuffix(updateStudent, "WHERE id = :id"))
}

func TestResponseStatements(t *testing.T) {
	cols := responseColumns()
	require.Len(t, cols, 38)
	assert.Equal(t, "user_id", cols[0])
	assert.Equal(t, strings.Count(insertResponse, ":"), len(cols))
	assert.Contains(t, insertResponseUnique, "WHERE NOT EXISTS (SELECT 1 FROM survey_responses WHERE unique_id = :unique_id)")
	assert.Contains(t, selectResponses, "LEFT JOIN students s ON s.unique_id = sr.unique_id")
	assert.Contains(t, selectResponses, "sr.previous_education")
}

func TestErrorMapping(t *testing.T) {
	assert.True(t, errors.Is(ErrDuplicate, survey.ErrDuplicate))
	assert.Equal(t, "23505", pgCode(&pq.Error{Code: "23505"}))
	assert.Equal(t, "", pgCode(errors.New("boom")))
}

func TestStudentSubject(t *testing.T) {
	st := Student{UniqueID: "7", Fullname: "Aliyev Vali", GroupName: "IT-21", Phone: "+998901234567"}
	assert.Equal(t, survey.Subject{UniqueID: "7", Fullname: "Aliyev Vali", GroupName: "IT-21", Phone: "+998901234567"}, st.Subject())
}

// openTestDB connects to KUAF_TEST_DATABASE_DSN and applies the schema.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("KUAF_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("KUAF_TEST_DATABASE_DSN not set")
	}
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	down, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.down.sql"))
	require.NoError(t, err)
	up, err := os.ReadFile(filepath.Join("..", "..", "migrations", "000001_init.up.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(down))
	require.NoError(t, err)
	_, err = db.Exec(string(up))
	require.NoError(t, err)
	return db
}

func TestStoreAgainstPostgres(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	s := New(db, Options{RejectDuplicates: true})

	res, err := s.UpsertStudent(ctx, Student{Fullname: "Aliyev Vali", Passport: "AB1234567", JSHSHIR: "12345678901234", GroupName: "IT-21"})
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Action: ActionAdded, UniqueID: "1"}, res)

	res, err = s.UpsertStudent(ctx, Student{Fullname: "Karimova Dilnoza", Passport: "AC7654321"})
	require.NoError(t, err)
	assert.Equal(t, "2", res.UniqueID)

	res, err = s.UpsertStudent(ctx, Student{Fullname: "Aliyev Vali", JSHSHIR: "12345678901234", Phone: "+998901112233"})
	require.NoError(t, err)
	assert.Equal(t, UpsertResult{Action: ActionUpdated, UniqueID: "1"}, res)

	st, err := s.FindSubject(ctx, survey.ClassifyQuery("ab1234567"))
	require.NoError(t, err)
	assert.Equal(t, "IT-21", st.GroupName)
	assert.Equal(t, "+998901112233", st.Phone)

	_, err = s.FindSubject(ctx, survey.ClassifyQuery("ZZ0000000"))
	assert.ErrorIs(t, err, ErrNotFound)

	rec := survey.BuildRecord(99, survey.Answers(st.Subject().Fields()))
	require.NoError(t, s.InsertSurvey(ctx, rec))
	assert.ErrorIs(t, s.InsertSurvey(ctx, rec), ErrDuplicate)

	rows, err := s.ListResponses(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "AB1234567", rows[0].Passport)

	ids, err := s.SurveyUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{99}, ids)

	added, err := s.AddStaff(ctx, 555, 1, "")
	require.NoError(t, err)
	assert.True(t, added)
	added, err = s.AddStaff(ctx, 555, 1, "")
	require.NoError(t, err)
	assert.False(t, added)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Students: 2, Surveys: 1, Staff: 1}, stats)

	n, err := s.ClearSurveys(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	removed, err := s.RemoveStaff(ctx, 555)
	require.NoError(t, err)
	assert.True(t, removed)
}
