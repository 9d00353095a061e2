package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/banco-questoes-web/internal/models"
	appErrors "github.com/noah-isme/banco-questoes-web/pkg/errors"
	"github.com/noah-isme/banco-questoes-web/pkg/export"
)

// ExportFormat is a supported export file type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

var exportHeaders = []string{"ID", "Matéria", "Vestibular", "Ano", "Assunto", "Dificuldade", "Enunciado", "Resposta correta"}

var exportWeights = []float64{0.6, 1.4, 1.2, 0.6, 1.4, 1, 6, 2.2}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, widths []float64) ([]byte, error)
}

// ExportFile is a rendered export ready to be sent to the browser.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the current result list of a session.
type ExportService struct {
	csv    csvRenderer
	pdf    pdfRenderer
	title  string
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get defaults.
func NewExportService(title string, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = &export.CSVExporter{Comma: ';', BOM: true}
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, title: title, logger: logger, now: time.Now}
}

// ParseExportFormat validates a format name.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(raw)) {
	case ExportCSV:
		return ExportCSV, nil
	case ExportPDF:
		return ExportPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// Render builds the export file for questions.
func (s *ExportService) Render(format ExportFormat, questions []models.Question) (*ExportFile, error) {
	data := QuestionDataset(questions)
	stamp := s.now().UTC().Format("20060102-150405")

	var (
		out         []byte
		err         error
		contentType string
	)
	switch format {
	case ExportCSV:
		out, err = s.csv.Render(data)
		contentType = "text/csv; charset=utf-8"
	case ExportPDF:
		out, err = s.pdf.Render(data, s.title, exportWeights)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Error("export render failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("questoes-%s.%s", stamp, format),
		ContentType: contentType,
		Data:        out,
	}, nil
}

// QuestionDataset flattens questions into export rows.
func QuestionDataset(questions []models.Question) export.Dataset {
	rows := make([]map[string]string, 0, len(questions))
	for _, q := range questions {
		year := ""
		if q.Year != 0 {
			year = strconv.Itoa(q.Year)
		}
		rows = append(rows, map[string]string{
			"ID":               strconv.Itoa(q.ID),
			"Matéria":          q.Subject,
			"Vestibular":       q.Exam,
			"Ano":              year,
			"Assunto":          q.Topic,
			"Dificuldade":      q.Difficulty.Label(),
			"Enunciado":        q.Statement,
			"Resposta correta": q.CorrectAnswer,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
