// Package exchange moves students and survey responses in and out of xlsx workbooks.
package exchange

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/kuafsurvey/core/logger"
	tghelpers "github.com/m3rciful/kuafsurvey/core/telegram/helpers"
	"github.com/m3rciful/kuafsurvey/internal/store"
)

// Positional columns of the student roster (zero based).
const (
	colTalabaID = 1
	colFullname = 2
	colBirth    = 9
	colPassport = 10
	colJSHSHIR  = 11
	colPassDate = 12
	colCourse   = 13
)

// minDateSerial is 1927-05-18; smaller numbers are not treated as dates.
const minDateSerial = 10000

// StudentWriter upserts imported students.
type StudentWriter interface {
	UpsertStudent(ctx context.Context, s store.Student) (store.UpsertResult, error)
}

// ImportResult summarizes one import.
type ImportResult struct {
	Added   int
	Updated int
	Skipped int
	Errors  []string
}

// ImportStudents reads the first sheet of an xlsx roster. The header row is
// skipped, as are rows without a usable name or passport. Row failures are
// collected and do not abort the import.
func ImportStudents(ctx context.Context, w StudentWriter, r io.Reader) (ImportResult, error) {
	var res ImportResult
	start := time.Now()

	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return res, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return res, fmt.Errorf("open workbook: no sheets")
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return res, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	for i := 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		st, ok := ParseStudentRow(rows[i])
		if !ok {
			res.Skipped++
			continue
		}
		out, err := w.UpsertStudent(ctx, st)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Qator %d: %v", i+1, err))
			continue
		}
		switch out.Action {
		case store.ActionAdded:
			res.Added++
		case store.ActionUpdated:
			res.Updated++
		}
	}

	logger.Info(ctx, logger.CompExchange, "import.students",
		slog.Int("rows", len(rows)),
		slog.Int("added", res.Added),
		slog.Int("updated", res.Updated),
		slog.Int("count", len(res.Errors)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return res, nil
}

// ParseStudentRow maps one roster row to a student. It reports false when the
// row has to be skipped.
func ParseStudentRow(row []string) (store.Student, bool) {
	fullname := strings.TrimSpace(cell(row, colFullname))
	if fullname == "" || strings.EqualFold(fullname, "nan") || isNumeric(strings.ReplaceAll(fullname, ".", "")) {
		return store.Student{}, false
	}
	passport := strings.ToUpper(strings.TrimSpace(cell(row, colPassport)))
	if passport == "" || passport == "NAN" {
		return store.Student{}, false
	}
	jshshir := value(row, colJSHSHIR)
	if !isNumeric(jshshir) {
		jshshir = ""
	}
	return store.Student{
		TalabaID:          value(row, colTalabaID),
		Fullname:          fullname,
		Citizenship:       value(row, 3),
		Country:           value(row, 4),
		Nationality:       value(row, 5),
		Region:            value(row, 6),
		District:          value(row, 7),
		Gender:            value(row, 8),
		BirthDate:         date(row, colBirth),
		Passport:          passport,
		JSHSHIR:           jshshir,
		PassportDate:      date(row, colPassDate),
		Course:            value(row, colCourse),
		Faculty:           value(row, 14),
		GroupName:         value(row, 15),
		Language:          value(row, 16),
		StudyYear:         value(row, 17),
		Semester:          value(row, 18),
		Graduate:          value(row, 19),
		Specialty:         value(row, 20),
		EducationType:     value(row, 21),
		EducationForm:     value(row, 22),
		PaymentType:       value(row, 23),
		GrantType:         value(row, 24),
		PreviousEducation: value(row, 25),
		StudentCategory:   value(row, 26),
		SocialCategory:    value(row, 27),
		FamilyMembers:     value(row, 28),
	}, true
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

// value trims a cell, drops a float ".0" tail and maps "nan" to "".
func value(row []string, idx int) string {
	v := strings.TrimSuffix(strings.TrimSpace(cell(row, idx)), ".0")
	if strings.EqualFold(v, "nan") {
		return ""
	}
	return v
}

// date renders serial or textual dates as dd.mm.yyyy and keeps anything else verbatim.
func date(row []string, idx int) string {
	v := strings.TrimSpace(cell(row, idx))
	if v == "" || strings.EqualFold(v, "nan") {
		return ""
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial > minDateSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("02.01.2006")
		}
	}
	if t, ok := tghelpers.ParseFlexibleDate(v); ok {
		return t.Format("02.01.2006")
	}
	return v
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
