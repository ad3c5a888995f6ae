package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"vyapar/backend/internal/domain"
	"vyapar/backend/internal/store"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"

	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// cell is either text or a number; numbers stay numeric in workbooks.
type cell struct {
	text   string
	number *decimal.Decimal
}

func textCell(s string) cell { return cell{text: s} }

// csvText quotes text a spreadsheet would otherwise evaluate as a formula.
func (c cell) csvText() string {
	if c.number == nil && c.text != "" && strings.ContainsRune("=+-@\t\r", rune(c.text[0])) {
		return "'" + c.text
	}
	return c.text
}

func numberCell(d decimal.Decimal) cell { return cell{text: d.String(), number: &d} }

// optionalCell leaves an unset (zero) cost blank, as the ledger stores it.
func optionalCell(d decimal.Decimal) cell {
	if d.IsZero() {
		return textCell("")
	}
	return numberCell(d)
}

type sheet struct {
	headers []string
	rows    [][]cell
}

// Export renders one table. Sales gain the derived GST Amount and Total Amount columns.
func (s *Service) Export(ctx context.Context, table store.Table, format string) (domain.Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return domain.Export{}, domain.NewValidationError("Format must be csv or xlsx")
	}

	sh, err := s.exportSheet(ctx, table)
	if err != nil {
		return domain.Export{}, err
	}

	name := fmt.Sprintf("%s-%s.%s", strings.ToLower(string(table)), s.opts.Now().Format("20060102"), format)
	if format == FormatXLSX {
		body, err := writeXLSX(string(table), sh)
		if err != nil {
			return domain.Export{}, err
		}
		return domain.Export{Filename: name, ContentType: contentTypeXLSX, Body: body}, nil
	}
	body, err := writeCSV(sh)
	if err != nil {
		return domain.Export{}, err
	}
	return domain.Export{Filename: name, ContentType: contentTypeCSV, Body: body}, nil
}

func (s *Service) exportSheet(ctx context.Context, table store.Table) (sheet, error) {
	sh := sheet{headers: store.Headers(table)}
	switch table {
	case store.Sales:
		sales, err := s.agg.Sales(ctx)
		if err != nil {
			return sheet{}, err
		}
		sh.headers = append(sh.headers, "GST Amount", "Total Amount")
		for _, r := range sales {
			sh.rows = append(sh.rows, []cell{
				textCell(r.Date), textCell(r.Item), numberCell(r.Quantity), optionalCell(r.CostPrice), numberCell(r.SellingPrice),
				textCell(r.Customer), numberCell(r.GSTRate), numberCell(r.GSTAmount().Round(2)), numberCell(r.TotalAmount().Round(2)),
			})
		}
	case store.Inventory:
		items, err := s.agg.Inventory(ctx)
		if err != nil {
			return sheet{}, err
		}
		for _, r := range items {
			sh.rows = append(sh.rows, []cell{textCell(r.Item), numberCell(r.Stock), optionalCell(r.CostPrice)})
		}
	case store.Expenses:
		expenses, err := s.agg.Expenses(ctx)
		if err != nil {
			return sheet{}, err
		}
		for _, r := range expenses {
			sh.rows = append(sh.rows, []cell{
				textCell(r.Date), textCell(r.Category), textCell(r.Description), numberCell(r.Amount), textCell(r.PaymentMethod),
			})
		}
	case store.Customers:
		customers, err := s.agg.Customers(ctx)
		if err != nil {
			return sheet{}, err
		}
		for _, r := range customers {
			sh.rows = append(sh.rows, []cell{textCell(r.Name), textCell(r.Phone), textCell(r.Email), textCell(r.Address)})
		}
	default:
		return sheet{}, domain.NewValidationError("Unknown table")
	}
	return sh, nil
}

func writeCSV(sh sheet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sh.headers); err != nil {
		return nil, err
	}
	for _, row := range sh.rows {
		record := make([]string, len(row))
		for i, c := range row {
			record[i] = c.csvText()
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(title string, sh sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", title); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(sh.headers))
	for i, h := range sh.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(title, "A1", &header); err != nil {
		return nil, err
	}
	for r, row := range sh.rows {
		values := make([]interface{}, len(row))
		for i, c := range row {
			if c.number != nil {
				values[i] = c.number.InexactFloat64()
			} else {
				values[i] = c.text
			}
		}
		if err := f.SetSheetRow(title, fmt.Sprintf("A%d", r+2), &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
