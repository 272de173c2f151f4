// internal/adapters/storage/workbook.go
package storage

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
)

// XLSXContentType is the MIME type of generated workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var repairTransferHeaders = []string{
	"Transfer ID", "Product ID", "From Center", "To Center", "Status",
	"Quantity", "Damaged", "Under Repair", "Repaired", "Irreparable", "Transferred",
	"Serial Numbers", "Repair Cost", "Damage Remark", "Transfer Remark",
	"Created By", "Created At", "Returned At",
}

// WriteRepairTransfers renders records as a single-sheet workbook
func WriteRepairTransfers(w io.Writer, records []*domain.RepairTransferRecord) error {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Repair Transfers")
	if err != nil {
		return fmt.Errorf("failed to add worksheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, header := range repairTransferHeaders {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, t := range records {
		row := sheet.AddRow()
		for _, value := range repairTransferRow(t) {
			row.AddCell().Value = value
		}
	}

	for i := range repairTransferHeaders {
		sheet.SetColWidth(i+1, i+1, 15)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func repairTransferRow(t *domain.RepairTransferRecord) []string {
	serials := make([]string, 0, len(t.SerialNumbers))
	for _, u := range t.SerialNumbers {
		serials = append(serials, u.SerialNumber)
	}
	returnedAt := ""
	if t.ReturnedAt != nil {
		returnedAt = t.ReturnedAt.Format(time.RFC3339)
	}
	return []string{
		t.ID.String(),
		t.ProductID.String(),
		t.FromCenterID.String(),
		t.ToCenterID.String(),
		string(t.Status),
		strconv.Itoa(t.Quantity),
		strconv.Itoa(t.DamagedQty),
		strconv.Itoa(t.UnderRepairQty),
		strconv.Itoa(t.RepairedQty),
		strconv.Itoa(t.IrrepairedQty),
		strconv.Itoa(t.TransferredQty),
		strings.Join(serials, ", "),
		t.TotalCost().StringFixed(2),
		t.DamageRemark,
		t.TransferRemark,
		t.CreatedBy,
		t.CreatedAt.Format(time.RFC3339),
		returnedAt,
	}
}
