package upload

import (
	"strconv"
	"strings"

	"claims-payment-backend/internal/models"
)

// The checks below are pure: each sees the row and the result of the lookup
// it depends on, and returns nil when the row may proceed.

func checkProvider(row UploadRow, provider *models.ProviderRecord) *Rejection {
	if provider == nil {
		return reject(row.Position, CategoryReferential,
			"Invalid hospital (%s) or HCP code (%s)", row.HospName, row.HCPCode)
	}
	return nil
}

func checkBatch(row UploadRow, batch *models.BatchRecord) *Rejection {
	if batch == nil {
		return reject(row.Position, CategoryReferential,
			"Invalid batch number (%s)", row.BatchNumber)
	}
	return nil
}

func checkBillAmount(row UploadRow, batch *models.BatchRecord) *Rejection {
	uploaded, uploadedOK := ParseAmount(row.BillAmount)
	expected, expectedOK := ParseAmount(batch.BillAmount)
	if !uploadedOK || !expectedOK || !uploaded.Equal(expected) {
		return reject(row.Position, CategoryConsistency,
			"Bill amount (%s) does not match batch record (%s)",
			formatAmount(uploaded, uploadedOK), formatAmount(expected, expectedOK))
	}
	return nil
}

func checkBank(row UploadRow) *Rejection {
	if !IsValidBank(row.BankName) {
		return reject(row.Position, CategoryPolicy, "Invalid bank name (%s)", row.BankName)
	}
	return nil
}

func checkApprovedAmount(row UploadRow) *Rejection {
	approved, ok := ParseAmount(row.ApprovedAmount)
	if !ok {
		return reject(row.Position, CategoryConsistency, "Invalid approved amount (%s)", row.ApprovedAmount)
	}
	// checkBillAmount has already accepted the bill amount.
	bill, _ := ParseAmount(row.BillAmount)
	if approved.GreaterThan(bill) {
		return reject(row.Position, CategoryConsistency,
			"Approved amount (%s) cannot exceed bill amount (%s)", row.ApprovedAmount, row.BillAmount)
	}
	return nil
}

func checkDuplicate(row UploadRow, existing bool) *Rejection {
	if existing {
		return reject(row.Position, CategoryUniqueness,
			"Duplicate record already exists for HCP %s and Batch %s", row.HCPCode, row.BatchNumber)
	}
	return nil
}

// buildRecord normalizes a row that passed every check.
func buildRecord(row UploadRow) (*models.PaymentRecord, *Rejection) {
	encounters, err := strconv.Atoi(strings.TrimSpace(row.NoOfEncounter))
	if err != nil {
		return nil, reject(row.Position, CategoryConsistency,
			"Invalid number of encounters (%s)", row.NoOfEncounter)
	}
	bill, _ := ParseAmount(row.BillAmount)
	approved, _ := ParseAmount(row.ApprovedAmount)

	return &models.PaymentRecord{
		HCPCode:        row.HCPCode,
		BatchNumber:    row.BatchNumber,
		HospName:       row.HospName,
		Narration:      row.Narration,
		NoOfEncounter:  encounters,
		BillAmount:     bill,
		ApprovedAmount: approved,
		BankName:       row.BankName,
		AcctNo:         row.AcctNo,
		DateOfPayment:  row.DateOfPayment,
	}, nil
}

// Snapshot holds the lookup results for one row.
type Snapshot struct {
	Provider      *models.ProviderRecord
	Batch         *models.BatchRecord
	PaymentExists bool
}

// Evaluate applies every check to a row against already fetched data and
// returns the record that would be inserted.
func Evaluate(row UploadRow, snap Snapshot) (*models.PaymentRecord, *Rejection) {
	if r := checkProvider(row, snap.Provider); r != nil {
		return nil, r
	}
	if r := checkBatch(row, snap.Batch); r != nil {
		return nil, r
	}
	if r := checkBillAmount(row, snap.Batch); r != nil {
		return nil, r
	}
	if r := checkBank(row); r != nil {
		return nil, r
	}
	if r := checkApprovedAmount(row); r != nil {
		return nil, r
	}
	if r := checkDuplicate(row, snap.PaymentExists); r != nil {
		return nil, r
	}
	return buildRecord(row)
}
