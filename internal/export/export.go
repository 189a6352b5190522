package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Бронирования"

// Exporter сохраняет отчеты по бронированиям в Excel файлы.
type Exporter struct {
	config config.ExportConfig
	logger *zerolog.Logger
}

func NewExporter(cfg config.ExportConfig, logger *zerolog.Logger) *Exporter {
	return &Exporter{config: cfg, logger: logger}
}

// SaveOwnerBookings создает Excel файл с бронированиями вещей владельца
// и возвращает путь к файлу.
func (e *Exporter) SaveOwnerBookings(ownerID int64, rows []models.BookingReportRow) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(e.config.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Вещь", "Арендатор", "Начало", "Окончание", "Статус"}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, row := range rows {
		rowNum := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowNum), row.BookingID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowNum), row.ItemName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowNum), row.BookerName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowNum), row.Start.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowNum), row.End.Format("02.01.2006 15:04"))
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowNum), statusLabel(row.Status))

		if styleID, err := statusStyle(f, row.Status); err == nil {
			statusCell := fmt.Sprintf("F%d", rowNum)
			_ = f.SetCellStyle(sheetName, statusCell, statusCell, styleID)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 10)
	_ = f.SetColWidth(sheetName, "B", "C", 25)
	_ = f.SetColWidth(sheetName, "D", "E", 20)
	_ = f.SetColWidth(sheetName, "F", "F", 16)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("owner_%d_bookings_%s.xlsx", ownerID, time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.config.Path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int64("owner_id", ownerID).Msg("Excel file created")
	return filePath, nil
}

// statusLabel возвращает читаемый статус для отчета
func statusLabel(status models.BookingStatus) string {
	switch status {
	case models.StatusWaiting:
		return "Ожидает подтверждения"
	case models.StatusApproved:
		return "Подтверждено"
	case models.StatusRejected:
		return "Отклонено"
	case models.StatusCanceled:
		return "Отменено"
	default:
		return string(status)
	}
}

// statusStyle возвращает стиль ячейки по статусу бронирования
func statusStyle(f *excelize.File, status models.BookingStatus) (int, error) {
	var color string
	switch status {
	case models.StatusApproved:
		color = "#C6EFCE"
	case models.StatusWaiting:
		color = "#FFEB9C"
	case models.StatusRejected, models.StatusCanceled:
		color = "#FFC7CE"
	default:
		color = "#FFFFFF"
	}

	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top"},
	})
}
