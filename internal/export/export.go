// Package export writes registry and payment tables as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"claims-payment-backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// PaymentHeaders match the upload columns, so an export can be re-uploaded.
var PaymentHeaders = []string{
	"hcpcode", "batchnumber", "hospname", "narration", "noofencounter",
	"billamount", "approvedamount", "bankname", "acctno", "dateofpayment",
}

var ProviderHeaders = []string{
	"hcpcode", "name", "acctno", "acctname", "phone", "location",
	"contactperson", "insurancetype", "address", "registerbank", "band", "status",
}

var BatchHeaders = []string{
	"batchnumber", "hcpcode", "hospname", "utilizationmonth", "year", "billamount", "claimstype",
}

func Payments(w io.Writer, payments []models.PaymentRecord) error {
	rows := make([][]interface{}, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []interface{}{
			p.HCPCode, p.BatchNumber, p.HospName, p.Narration, p.NoOfEncounter,
			p.BillAmount.InexactFloat64(), p.ApprovedAmount.InexactFloat64(),
			p.BankName, p.AcctNo, p.DateOfPayment,
		})
	}
	return writeSheet(w, "Payments", PaymentHeaders, rows)
}

func Providers(w io.Writer, providers []models.ProviderRecord) error {
	rows := make([][]interface{}, 0, len(providers))
	for _, p := range providers {
		rows = append(rows, []interface{}{
			p.HCPCode, p.Name, p.AcctNo, p.AcctName, p.Phone, p.Location,
			p.ContactPerson, p.InsuranceType, p.Address, p.RegisterBank, p.Band, p.Status,
		})
	}
	return writeSheet(w, "Hospitals", ProviderHeaders, rows)
}

func Batches(w io.Writer, batches []models.BatchRecord) error {
	rows := make([][]interface{}, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []interface{}{
			b.BatchNumber, b.HCPCode, b.HospName, b.UtilizationMonth, b.Year, b.BillAmount, b.ClaimsType,
		})
	}
	return writeSheet(w, "Batches", BatchHeaders, rows)
}

func writeSheet(w io.Writer, sheet string, headers []string, rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("error naming sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("error setting headers: %w", err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("error writing row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}
