package survey

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecords struct {
	inserted []Record
	existing map[string]bool
	err      error
}

func (f *fakeRecords) InsertSurvey(_ context.Context, rec Record) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeRecords) HasResponse(_ context.Context, uniqueID string) (bool, error) {
	return f.existing[uniqueID], nil
}

type fakeSessions struct{ cleared []int64 }

func (f *fakeSessions) Clear(_ context.Context, userID int64) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

func completedAnswers() Answers {
	a := Answers{}
	for _, f := range RecordFields {
		a[f] = "v"
	}
	a[FieldUniqueID] = "17"
	return a
}

func TestCompleteSaves(t *testing.T) {
	recs := &fakeRecords{}
	sess := &fakeSessions{}
	var observed []Status
	c := &Completer{Records: recs, Sessions: sess, Observe: func(s Status) { observed = append(observed, s) }}

	out, err := c.Complete(context.Background(), 9, completedAnswers())
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, out.Status)
	require.Len(t, recs.inserted, 1)
	assert.Equal(t, int64(9), recs.inserted[0].UserID)
	assert.Equal(t, "17", recs.inserted[0].UniqueID)
	assert.Equal(t, []int64{9}, sess.cleared)
	assert.Equal(t, []Status{StatusSaved}, observed)
}

func TestCompleteClearsOnFailure(t *testing.T) {
	boom := errors.New("db down")
	recs := &fakeRecords{err: boom}
	sess := &fakeSessions{}
	c := &Completer{Records: recs, Sessions: sess}

	out, err := c.Complete(context.Background(), 3, completedAnswers())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, out.Status)
	assert.Equal(t, []int64{3}, sess.cleared)
}

func TestCompleteDuplicatePolicy(t *testing.T) {
	recs := &fakeRecords{existing: map[string]bool{"17": true}}
	sess := &fakeSessions{}

	allow := &Completer{Records: recs, Sessions: sess, Policy: DuplicatesAllow}
	out, err := allow.Complete(context.Background(), 1, completedAnswers())
	require.NoError(t, err)
	assert.Equal(t, StatusSaved, out.Status)

	reject := &Completer{Records: recs, Sessions: sess, Policy: DuplicatesReject}
	out, err = reject.Complete(context.Background(), 1, completedAnswers())
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, out.Status)
	assert.Len(t, recs.inserted, 1)
	assert.Equal(t, []int64{1, 1}, sess.cleared)
}

func TestCompleteMapsStoreDuplicate(t *testing.T) {
	recs := &fakeRecords{err: errors.Join(errors.New("unique violation"), ErrDuplicate)}
	c := &Completer{Records: recs, Sessions: &fakeSessions{}}
	out, err := c.Complete(context.Background(), 1, completedAnswers())
	require.NoError(t, err)
	assert.Equal(t, StatusDuplicate, out.Status)
}

func TestBuildRecordFillsMissingWithEmpty(t *testing.T) {
	rec := BuildRecord(4, Answers{FieldPhone: "+1"})
	values := rec.Values()
	assert.Len(t, values, len(RecordFields))
	for _, f := range RecordFields {
		v, ok := values[f]
		require.True(t, ok, f)
		if f != FieldPhone {
			assert.Equal(t, "", v, f)
		}
	}
	assert.Equal(t, "+1", rec.Phone)
}

func TestParseDuplicatePolicy(t *testing.T) {
	p, err := ParseDuplicatePolicy("")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesAllow, p)
	p, err = ParseDuplicatePolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, DuplicatesReject, p)
	_, err = ParseDuplicatePolicy("maybe")
	assert.Error(t, err)
}
