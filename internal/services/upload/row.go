package upload

// Column names an upload file must carry, in reporting order.
const (
	ColHCPCode        = "hcpcode"
	ColBatchNumber    = "batchnumber"
	ColHospName       = "hospname"
	ColNarration      = "narration"
	ColNoOfEncounter  = "noofencounter"
	ColBillAmount     = "billamount"
	ColApprovedAmount = "approvedamount"
	ColBankName       = "bankname"
	ColAcctNo         = "acctno"
	ColDateOfPayment  = "dateofpayment"
)

var RequiredColumns = []string{
	ColHCPCode,
	ColBatchNumber,
	ColHospName,
	ColNarration,
	ColNoOfEncounter,
	ColBillAmount,
	ColApprovedAmount,
	ColBankName,
	ColAcctNo,
	ColDateOfPayment,
}

// UploadRow is one data line of an upload file, values exactly as read.
type UploadRow struct {
	Position       int
	HCPCode        string
	BatchNumber    string
	HospName       string
	Narration      string
	NoOfEncounter  string
	BillAmount     string
	ApprovedAmount string
	BankName       string
	AcctNo         string
	DateOfPayment  string
}

func rowFromFields(position int, fields map[string]string) UploadRow {
	return UploadRow{
		Position:       position,
		HCPCode:        fields[ColHCPCode],
		BatchNumber:    fields[ColBatchNumber],
		HospName:       fields[ColHospName],
		Narration:      fields[ColNarration],
		NoOfEncounter:  fields[ColNoOfEncounter],
		BillAmount:     fields[ColBillAmount],
		ApprovedAmount: fields[ColApprovedAmount],
		BankName:       fields[ColBankName],
		AcctNo:         fields[ColAcctNo],
		DateOfPayment:  fields[ColDateOfPayment],
	}
}
