package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	dashboard "mellioncoin-cloud/internal/dashboard/domain"
	orders "mellioncoin-cloud/internal/orders/domain"
)

var dashboardHeader = []string{
	"order_index",
	"date",
	"cycle_end",
	"invested",
	"interest",
	"commission",
	"bonus_commission",
	"global_revenue",
	"units",
	"circulation",
	"yield_pct",
	"favorite",
}

// BuildDashboardCSV renders dashboard rows as CSV. Amounts are in
// currency units with two decimals.
func BuildDashboardCSV(rows []dashboard.Row) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(dashboardHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.Index, 10),
			row.Date.Format(time.RFC3339),
			row.CycleEnd.Format(time.RFC3339),
			row.Invested.Format(),
			row.Interest.Format(),
			row.Commission.Format(),
			row.BonusCommission.Format(),
			row.GlobalRevenue.Format(),
			strconv.FormatInt(row.Units, 10),
			row.Circulation.Format(),
			fmt.Sprintf("%.2f", row.YieldPct),
			strconv.FormatBool(row.Favorite),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildOrdersCSV renders the order history as CSV, one line per tier.
func BuildOrdersCSV(list []*orders.Order) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	header := []string{
		"order_index", "computed_at", "amount", "tier", "role", "units",
		"capital", "interest", "commission", "tier_revenue",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, order := range list {
		for _, tier := range order.Result.Tiers {
			record := []string{
				strconv.FormatInt(order.Index, 10),
				order.ComputedAt.Format(time.RFC3339),
				order.Result.Amount.Format(),
				strconv.Itoa(tier.Index),
				tier.Role,
				strconv.FormatInt(tier.Units, 10),
				tier.Capital.Format(),
				tier.Interest.Format(),
				tier.Commission.Format(),
				tier.Revenue.Format(),
			}
			if err := writer.Write(record); err != nil {
				return nil, err
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDashboardPDF renders dashboard rows as a PDF table.
func BuildDashboardPDF(username string, rows []dashboard.Row) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "MellionCoin Dashboard")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("User: %s", username))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 8)
	pdf.CellFormat(12, 6, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(24, 6, "Cycle End", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Invested", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Interest", "1", 0, "C", false, 0, "")
	pdf.CellFormat(28, 6, "Commission", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Revenue", "1", 0, "C", false, 0, "")
	pdf.CellFormat(16, 6, "Units", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Circulation", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Yield %", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, row := range rows {
		pdf.CellFormat(12, 6, strconv.FormatInt(row.Index, 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, row.Date.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(24, 6, row.CycleEnd.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, row.Invested.Format(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, row.Interest.Format(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, row.Commission.Format(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, row.GlobalRevenue.Format(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(16, 6, strconv.FormatInt(row.Units, 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, row.Circulation.Format(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", row.YieldPct), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildOrdersPDF renders the order history as a PDF, one section per
// order with its tier table.
func BuildOrdersPDF(username string, list []*orders.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "MellionCoin Order History")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("User: %s", username))
	pdf.Ln(8)

	for _, order := range list {
		res := order.Result
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Order %d: %s invested on %s",
			order.Index, res.Amount.Format(), order.ComputedAt.Format("2006-01-02")))
		pdf.Ln(7)

		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(16, 6, "Tier", "1", 0, "C", false, 0, "")
		pdf.CellFormat(26, 6, "Role", "1", 0, "C", false, 0, "")
		pdf.CellFormat(18, 6, "Units", "1", 0, "C", false, 0, "")
		pdf.CellFormat(32, 6, "Capital", "1", 0, "C", false, 0, "")
		pdf.CellFormat(32, 6, "Interest", "1", 0, "C", false, 0, "")
		pdf.CellFormat(32, 6, "Commission", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, tier := range res.Tiers {
			pdf.CellFormat(16, 6, strconv.Itoa(tier.Index), "1", 0, "C", false, 0, "")
			pdf.CellFormat(26, 6, tier.Role, "1", 0, "C", false, 0, "")
			pdf.CellFormat(18, 6, strconv.FormatInt(tier.Units, 10), "1", 0, "R", false, 0, "")
			pdf.CellFormat(32, 6, tier.Capital.Format(), "1", 0, "R", false, 0, "")
			pdf.CellFormat(32, 6, tier.Interest.Format(), "1", 0, "R", false, 0, "")
			pdf.CellFormat(32, 6, tier.Commission.Format(), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildDashboardXLSX renders dashboard rows as a workbook.
func BuildDashboardXLSX(rows []dashboard.Row) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "dashboard"
	f.SetSheetName("Sheet1", sheet)

	for i, title := range dashboardHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i, row := range rows {
		values := []any{
			row.Index,
			row.Date.Format(time.RFC3339),
			row.CycleEnd.Format(time.RFC3339),
			row.Invested.Amount(),
			row.Interest.Amount(),
			row.Commission.Amount(),
			row.BonusCommission.Amount(),
			row.GlobalRevenue.Amount(),
			row.Units,
			row.Circulation.Amount(),
			row.YieldPct,
			row.Favorite,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildOrdersXLSX renders the order history as a workbook with one
// summary sheet and one tier sheet.
func BuildOrdersXLSX(list []*orders.Order) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "orders"
	tiersSheet := "tiers"
	f.SetSheetName("Sheet1", summarySheet)
	_, _ = f.NewSheet(tiersSheet)

	summaryHeader := []string{
		"order_index", "computed_at", "amount", "n_opt", "total_interest",
		"total_commission", "global_revenue", "circulation", "yield_pct",
	}
	for i, title := range summaryHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(summarySheet, cell, title)
	}
	for i, order := range list {
		res := order.Result
		values := []any{
			order.Index,
			order.ComputedAt.Format(time.RFC3339),
			res.Amount.Amount(),
			res.NOpt,
			res.TotalInterest.Amount(),
			res.TotalCommission.Amount(),
			res.GlobalRevenue.Amount(),
			res.Circulation.Amount(),
			res.YieldRatio * 100,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(summarySheet, cell, value)
		}
	}

	tierHeader := []string{"order_index", "tier", "role", "units", "capital", "interest", "commission"}
	for i, title := range tierHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(tiersSheet, cell, title)
	}
	row := 2
	for _, order := range list {
		for _, tier := range order.Result.Tiers {
			values := []any{
				order.Index, tier.Index, tier.Role, tier.Units,
				tier.Capital.Amount(), tier.Interest.Amount(), tier.Commission.Amount(),
			}
			for j, value := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, row)
				_ = f.SetCellValue(tiersSheet, cell, value)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
