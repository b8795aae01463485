package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/mycrochip/trivia-api/internal/domain/entity"
	"github.com/mycrochip/trivia-api/internal/logging"
	apperrors "github.com/mycrochip/trivia-api/internal/pkg/errors"
)

// maxImportSize: предельный размер загружаемого файла с вопросами
const maxImportSize = 10 << 20

// Колонки файла импорта по умолчанию (если нет строки заголовков)
var importColumns = []string{"question", "answer", "category", "difficulty"}

// ImportQuestions загружает вопросы из CSV или XLSX одной транзакцией
// POST /questions/import (multipart, поле file)
func (h *QuestionHandler) ImportQuestions(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest)
		return
	}
	if fileHeader.Size > maxImportSize {
		respondError(c, http.StatusBadRequest)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest)
		return
	}
	defer file.Close()

	var rows [][]string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		rows, err = readCSVRows(file)
	case ".xlsx":
		rows, err = readXLSXRows(file)
	default:
		err = fmt.Errorf("%w: unsupported file type %q", apperrors.ErrBadRequest, fileHeader.Filename)
	}
	if err != nil {
		reqLogger := logging.FromContext(c.Request.Context())
		reqLogger.Info().Err(err).Str("file", fileHeader.Filename).Msg("import file rejected")
		respondError(c, http.StatusBadRequest)
		return
	}

	questions, err := rowsToQuestions(rows)
	if err != nil {
		handleError(c, err)
		return
	}

	total, err := h.questionService.ImportQuestions(c.Request.Context(), questions)
	if err != nil {
		handleError(c, err)
		return
	}
	if h.recorder != nil {
		h.recorder.QuestionsImported(len(questions))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"imported":       len(questions),
		"totalQuestions": total,
	})
}

// ExportQuestions выгружает все вопросы в CSV или Excel
// GET /questions/export?format=csv|xlsx
func (h *QuestionHandler) ExportQuestions(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		respondError(c, http.StatusBadRequest)
		return
	}

	questions, err := h.questionService.ExportQuestions(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("questions_%s", time.Now().Format("2006-01-02"))
	if format == "xlsx" {
		h.exportXLSX(c, questions, filename)
		return
	}
	h.exportCSV(c, questions, filename)
}

var exportHeaders = []string{"id", "question", "answer", "category", "difficulty"}

// exportCSV экспортирует вопросы в CSV с правильным экранированием спецсимволов
func (h *QuestionHandler) exportCSV(c *gin.Context, questions []entity.Question, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	writer.Write(exportHeaders)
	for _, q := range questions {
		writer.Write([]string{
			strconv.FormatUint(uint64(q.ID), 10),
			sanitizeForExcel(q.Text),
			sanitizeForExcel(q.Answer),
			strconv.FormatUint(uint64(q.CategoryID), 10),
			strconv.Itoa(q.Difficulty),
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		reqLogger := logging.FromContext(c.Request.Context())
		reqLogger.Error().Err(err).Msg("csv export failed")
	}
}

// exportXLSX экспортирует вопросы в Excel с использованием StreamWriter
func (h *QuestionHandler) exportXLSX(c *gin.Context, questions []entity.Question, filename string) {
	log := logging.FromContext(c.Request.Context())

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Questions"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Error().Err(err).Msg("xlsx stream writer")
		respondError(c, http.StatusInternalServerError)
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, name := range exportHeaders {
		headers[i] = name
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Error().Err(err).Msg("xlsx header row")
		respondError(c, http.StatusInternalServerError)
		return
	}

	for i, q := range questions {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{q.ID, sanitizeForExcel(q.Text), sanitizeForExcel(q.Answer), q.CategoryID, q.Difficulty}
		if err := sw.SetRow(cell, row); err != nil {
			log.Error().Err(err).Int("row", i+2).Msg("xlsx row")
			respondError(c, http.StatusInternalServerError)
			return
		}
	}

	if err := sw.Flush(); err != nil {
		log.Error().Err(err).Msg("xlsx flush")
		respondError(c, http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Error().Err(err).Msg("xlsx write response")
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if isFormulaStart(s[0]) {
		return "'" + s
	}
	return s
}

// unsanitizeFromExcel снимает экранирование sanitizeForExcel при обратном импорте
func unsanitizeFromExcel(s string) string {
	if len(s) > 1 && s[0] == '\'' && isFormulaStart(s[1]) {
		return s[1:]
	}
	return s
}

func isFormulaStart(b byte) bool {
	return b == '=' || b == '+' || b == '-' || b == '@' || b == '\t' || b == '\r'
}

func readCSVRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv: %v", apperrors.ErrBadRequest, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open xlsx: %v", apperrors.ErrBadRequest, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx has no sheets", apperrors.ErrBadRequest)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: read xlsx: %v", apperrors.ErrBadRequest, err)
	}
	return rows, nil
}

// rowsToQuestions разбирает строки файла. Если первая строка содержит заголовки,
// колонки ищутся по именам (так принимается и файл экспорта с колонкой id),
// иначе используется порядок question, answer, category, difficulty.
func rowsToQuestions(rows [][]string) ([]entity.Question, error) {
	columns := map[string]int{}
	for i, name := range importColumns {
		columns[name] = i
	}

	if len(rows) > 0 && isHeaderRow(rows[0]) {
		columns = map[string]int{}
		for i, cell := range rows[0] {
			columns[strings.ToLower(strings.TrimSpace(cell))] = i
		}
		for _, name := range importColumns {
			if _, ok := columns[name]; !ok {
				return nil, fmt.Errorf("%w: missing column %q", apperrors.ErrValidation, name)
			}
		}
		rows = rows[1:]
	}

	questions := make([]entity.Question, 0, len(rows))
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		q, err := rowToQuestion(row, columns)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: file has no questions", apperrors.ErrValidation)
	}
	return questions, nil
}

func rowToQuestion(row []string, columns map[string]int) (entity.Question, error) {
	cell := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	category, err := parseIntCell(cell("category"))
	if err != nil || category < 0 {
		return entity.Question{}, fmt.Errorf("%w: invalid category %q", apperrors.ErrValidation, cell("category"))
	}
	difficulty, err := parseIntCell(cell("difficulty"))
	if err != nil {
		return entity.Question{}, fmt.Errorf("%w: invalid difficulty %q", apperrors.ErrValidation, cell("difficulty"))
	}

	return entity.Question{
		Text:       unsanitizeFromExcel(cell("question")),
		Answer:     unsanitizeFromExcel(cell("answer")),
		CategoryID: uint(category),
		Difficulty: difficulty,
	}, nil
}

func parseIntCell(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("not an integer")
	}
	return n, nil
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if strings.EqualFold(strings.TrimSpace(cell), "question") {
			return true
		}
	}
	return false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
