package exchange

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/m3rciful/kuafsurvey/core/logger"
	"github.com/m3rciful/kuafsurvey/internal/store"
)

// ErrEmpty is returned when there is nothing to export.
var ErrEmpty = errors.New("exchange: nothing to export")

// Sources lists what the exporters read.
type Sources interface {
	ListResponses(ctx context.Context) ([]store.ResponseRow, error)
	ListStudents(ctx context.Context) ([]store.Student, error)
}

// File is a rendered workbook.
type File struct {
	Name string
	Rows int
	Data *bytes.Buffer
}

const (
	responsesSheet  = "So'rovnoma natijalari"
	studentsSheet   = "Talabalar"
	responsesFill   = "4472C4"
	studentsFill    = "217346"
	timestampLayout = "2006-01-02 15:04:05"
)

// ResponseHeaders are the column titles of the responses workbook.
var ResponseHeaders = []string{
	"№",
	"Unikal ID", "Talaba ID", "F.I.O",
	"Jinsi", "Tug'ilgan sana", "Passport", "JSHSHIR", "Fuqarolik",
	"Viloyat", "Tuman",
	"Kurs", "Fakultet", "Guruh", "Mutaxassislik",
	"Ta'lim turi", "Ta'lim shakli", "To'lov turi", "Grant turi",
	"Talaba toifasi", "Ijtimoiy toifa",
	"Telefon", "Doimiy manzil", "Doimiy joylashuv",
	"Oldingi ta'lim", "Hujjat raqami",
	"Yutuqlar bormi", "Yutuqlar",
	"Sertifikat bormi", "Sertifikat turi", "Sertifikat tafsiloti",
	"Grantga hujjat topshirganmi", "Grant tafsiloti",
	"Ijtimoiy himoya", "Temir daftar", "Yoshlar daftari",
	"Ota ismi", "Otasi hayotmi", "Ota telefoni",
	"Ona ismi", "Onasi hayotmi", "Ona telefoni", "Ota-onasi birga",
	"Yashash turi", "TTJ qayerdan", "Ijara manzili", "Ijara joylashuv", "Ijara egasi",
	"Ishlaydimi", "Ish joyi", "Oilalimi",
	"Xorijga chiqish pasporti", "Ijtimoiy tarmoq kanali", "Kanal/Guruh linklari",
	"So'rovnoma sanasi",
}

// StudentHeaders are the column titles of the students workbook.
var StudentHeaders = []string{
	"№", "Unikal ID", "Talaba ID", "F.I.O",
	"Fuqarolik", "Davlat", "Millat",
	"Viloyat", "Tuman", "Jinsi", "Tug'ilgan sana",
	"Passport", "JSHSHIR", "Passport sanasi",
	"Kurs", "Fakultet", "Guruh", "Ta'lim tili",
	"O'quv yili", "Semestr", "Bitiruvchi",
	"Mutaxassislik", "Ta'lim turi", "Ta'lim shakli",
	"To'lov turi", "Grant turi", "Oldingi ta'lim",
	"Talaba toifasi", "Ijtimoiy toifa", "Oila a'zolari", "Telefon",
	"Qo'shilgan vaqt", "Yangilangan vaqt",
}

func responseRow(n int, r store.ResponseRow) []string {
	return []string{
		fmt.Sprint(n),
		r.UniqueID, r.TalabaID, r.Fullname,
		r.Gender, r.BirthDate, r.Passport, r.JSHSHIR, r.Citizenship,
		r.Region, r.District,
		r.Course, r.Faculty, r.GroupName, r.Specialty,
		r.EducationType, r.EducationForm, r.PaymentType, r.GrantType,
		r.StudentCategory, r.SocialCategory,
		r.Phone, r.PermanentAddress, r.PermanentLocation,
		r.PreviousEducation, r.DocumentNumber,
		r.HasAchievements, r.Achievements,
		r.HasCertificate, r.CertificateType, r.CertificateDetails,
		r.HasGrant, r.GrantDetails,
		r.SocialProtection, r.IronBook, r.YouthBook,
		r.FatherName, r.FatherAlive, r.FatherPhone,
		r.MotherName, r.MotherAlive, r.MotherPhone, r.ParentsTogether,
		r.LivingType, r.TTJLocation, r.RentAddress, r.RentLocation, r.RentOwner,
		r.IsWorking, r.Workplace, r.IsMarried,
		r.HasForeignPassport, r.HasSocialChannels, r.SocialLinks,
		stamp(r.CreatedAt),
	}
}

func studentRow(n int, s store.Student) []string {
	return []string{
		fmt.Sprint(n), s.UniqueID, s.TalabaID, s.Fullname,
		s.Citizenship, s.Country, s.Nationality,
		s.Region, s.District, s.Gender, s.BirthDate,
		s.Passport, s.JSHSHIR, s.PassportDate,
		s.Course, s.Faculty, s.GroupName, s.Language,
		s.StudyYear, s.Semester, s.Graduate,
		s.Specialty, s.EducationType, s.EducationForm,
		s.PaymentType, s.GrantType, s.PreviousEducation,
		s.StudentCategory, s.SocialCategory, s.FamilyMembers, s.Phone,
		stamp(s.CreatedAt), stamp(s.UpdatedAt),
	}
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timestampLayout)
}

// ExportResponses renders every survey response joined with its student.
func ExportResponses(ctx context.Context, src Sources, now time.Time) (File, error) {
	rows, err := src.ListResponses(ctx)
	if err != nil {
		return File{}, err
	}
	if len(rows) == 0 {
		return File{}, ErrEmpty
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = responseRow(i+1, r)
	}
	return render(ctx, sheetSpec{
		name:   "sorovnoma_natijalari_" + now.Format("20060102_150405") + ".xlsx",
		sheet:  responsesSheet,
		fill:   responsesFill,
		width:  18,
		header: ResponseHeaders,
		rows:   data,
	})
}

// ExportStudents renders the full student roster.
func ExportStudents(ctx context.Context, src Sources, now time.Time) (File, error) {
	students, err := src.ListStudents(ctx)
	if err != nil {
		return File{}, err
	}
	if len(students) == 0 {
		return File{}, ErrEmpty
	}
	data := make([][]string, len(students))
	for i, s := range students {
		data[i] = studentRow(i+1, s)
	}
	return render(ctx, sheetSpec{
		name:   "talabalar_royxati_" + now.Format("20060102_150405") + ".xlsx",
		sheet:  studentsSheet,
		fill:   studentsFill,
		width:  15,
		header: StudentHeaders,
		rows:   data,
	})
}

type sheetSpec struct {
	name   string
	sheet  string
	fill   string
	width  float64
	header []string
	rows   [][]string
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}

func render(ctx context.Context, spec sheetSpec) (File, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", spec.sheet); err != nil {
		return File{}, fmt.Errorf("rename sheet: %w", err)
	}
	headStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{spec.fill}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return File{}, fmt.Errorf("header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border:    thinBorder(),
	})
	if err != nil {
		return File{}, fmt.Errorf("body style: %w", err)
	}

	sw, err := f.NewStreamWriter(spec.sheet)
	if err != nil {
		return File{}, fmt.Errorf("stream writer: %w", err)
	}
	cols := len(spec.header)
	widths := []struct {
		from, to int
		w        float64
	}{
		{1, 1, 5},
		{2, 3, spec.width},
		{4, 4, 30},
		{5, cols, spec.width},
	}
	for _, cw := range widths {
		if err := sw.SetColWidth(cw.from, cw.to, cw.w); err != nil {
			return File{}, fmt.Errorf("column width: %w", err)
		}
	}

	if err := sw.SetRow("A1", styled(spec.header, headStyle)); err != nil {
		return File{}, fmt.Errorf("write header: %w", err)
	}
	for i, row := range spec.rows {
		if err := ctx.Err(); err != nil {
			return File{}, err
		}
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return File{}, err
		}
		if err := sw.SetRow(ref, styled(row, bodyStyle)); err != nil {
			return File{}, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return File{}, fmt.Errorf("flush: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return File{}, fmt.Errorf("encode workbook: %w", err)
	}
	logger.Info(ctx, logger.CompExchange, "export."+spec.sheetKey(),
		slog.String("op", spec.name),
		slog.Int("rows", len(spec.rows)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return File{Name: spec.name, Rows: len(spec.rows), Data: buf}, nil
}

func (s sheetSpec) sheetKey() string {
	if s.sheet == studentsSheet {
		return "students"
	}
	return "responses"
}

func styled(values []string, style int) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = excelize.Cell{StyleID: style, Value: v}
	}
	return out
}
