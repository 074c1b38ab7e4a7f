package survey

import (
	"context"
	"errors"
	"fmt"
)

// DuplicatePolicy decides whether a subject may submit more than one record.
type DuplicatePolicy string

const (
	DuplicatesAllow  DuplicatePolicy = "allow"
	DuplicatesReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy accepts "" as allow.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicatesAllow:
		return DuplicatesAllow, nil
	case DuplicatesReject:
		return DuplicatesReject, nil
	}
	return "", fmt.Errorf("survey: unknown duplicate policy %q", s)
}

// Status is the result of a completion attempt.
type Status string

const (
	StatusSaved     Status = "saved"
	StatusDuplicate Status = "duplicate"
	StatusFailed    Status = "failed"
)

// RecordWriter persists completed records.
type RecordWriter interface {
	InsertSurvey(ctx context.Context, rec Record) error
	HasResponse(ctx context.Context, uniqueID string) (bool, error)
}

// SessionClearer drops a user's session.
type SessionClearer interface {
	Clear(ctx context.Context, userID int64) error
}

// ErrDuplicate is returned by a RecordWriter that refuses a second record.
var ErrDuplicate = errors.New("survey: duplicate submission")

// Completer assembles and persists the final record.
type Completer struct {
	Records  RecordWriter
	Sessions SessionClearer
	Policy   DuplicatePolicy
	// Observe, when set, is called once per attempt with the status.
	Observe func(Status)
}

// CompletionOutcome carries the record that was attempted.
type CompletionOutcome struct {
	Status Status
	Record Record
}

// Complete builds the record, applies the duplicate policy, inserts it and
// clears the session whatever happened. The returned error is the
// persistence error for StatusFailed; a failed clear is joined to it.
func (c *Completer) Complete(ctx context.Context, userID int64, answers Answers) (CompletionOutcome, error) {
	rec := BuildRecord(userID, answers)
	status, err := c.persist(ctx, rec)
	if clearErr := c.Sessions.Clear(ctx, userID); clearErr != nil {
		err = errors.Join(err, fmt.Errorf("clear session: %w", clearErr))
	}
	if c.Observe != nil {
		c.Observe(status)
	}
	return CompletionOutcome{Status: status, Record: rec}, err
}

func (c *Completer) persist(ctx context.Context, rec Record) (Status, error) {
	if c.Policy == DuplicatesReject && rec.UniqueID != "" {
		dup, err := c.Records.HasResponse(ctx, rec.UniqueID)
		if err != nil {
			return StatusFailed, fmt.Errorf("check duplicate: %w", err)
		}
		if dup {
			return StatusDuplicate, nil
		}
	}
	if err := c.Records.InsertSurvey(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return StatusDuplicate, nil
		}
		return StatusFailed, fmt.Errorf("insert survey: %w", err)
	}
	return StatusSaved, nil
}
