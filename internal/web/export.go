package web

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/lbocquet/tombola/internal/ticket"
)

// exportSheet is the sheet tickets are written to.
const exportSheet = "Tickets"

// exportHeader matches the column order staff expect when printing tickets.
var exportHeader = []any{"Date", "Achat", "Ticket", "Nom", "Email", "Entreprise"}

// buildTicketWorkbook renders flattened ticket rows into an xlsx workbook,
// one physical ticket per row. The caller owns closing the returned file.
func buildTicketWorkbook(rows []ticket.TicketRow) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("cell name: %w", err)
		}
		values := []any{row.Date, row.Note, row.Label, row.Name, row.Email, row.Firm}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f, nil
}
