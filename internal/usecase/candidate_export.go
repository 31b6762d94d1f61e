package usecase

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"handyman-recruitment-backend/internal/domain"
	"handyman-recruitment-backend/pkg/apperror"
	"handyman-recruitment-backend/pkg/security"

	"github.com/xuri/excelize/v2"
)

var exportColumns = []string{
	"ID", "FULL NAME", "ID NUMBER", "PHONE", "EMAIL", "ADDRESS", "TRADE / SKILL",
	"YEARS EXPERIENCE", "WORK AREAS", "CV", "ID COPY", "MATRIC", "QUALIFICATION", "REGISTERED",
}

// Export renders every candidate to an XLSX workbook for the admin dashboard.
func (u *candidateUsecase) Export(ctx context.Context) ([]byte, error) {
	candidates, err := u.List(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Candidates"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, apperror.Internal(err)
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1F4E79"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	for rowIdx, c := range candidates {
		row := []interface{}{
			c.ID, c.FullName, c.IDNumber, c.PhoneNumber, c.Email, c.PhysicalAddress, c.TradeSkill,
			c.YearsExperience, c.WorkAreas,
			docName(c.CV), docName(c.IDCopy), docName(c.MatricCert), docName(c.QualificationCert),
			c.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to write Excel file: %w", err))
	}

	caller, _ := domain.PrincipalFromContext(ctx)
	security.DefaultLogger().LogAdminAction(ctx, security.EventDataExport, string(caller), map[string]interface{}{
		"rows": len(candidates),
	})
	return buf.Bytes(), nil
}

// ExportFilename is the download name for an export produced at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("candidates_%s.xlsx", t.Format("20060102_150405"))
}

func docName(d *domain.Document) string {
	if d == nil {
		return ""
	}
	return d.FileName
}
