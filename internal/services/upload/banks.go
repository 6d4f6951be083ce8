package upload

// Banks accepted in the bankname column. Matching is exact and case-sensitive.
var Banks = []string{
	"Access Bank",
	"Ecobank",
	"FCMB",
	"Fidelity",
	"First Bank",
	"GTBank",
	"Polaris Bank",
	"Providus Bank",
	"Stanbic IBTC",
	"Sterling Bank",
	"Union Bank",
	"UBA",
	"Unity Bank Plc",
	"Wema Bank",
	"Zenith Bank",
	"Kuda Bank",
	"Opay",
	"Moniepoint",
	"Palmpay",
	"FairMoney MFB",
	"Lapo Microfinance Bank",
}

var bankSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Banks))
	for _, b := range Banks {
		set[b] = struct{}{}
	}
	return set
}()

func IsValidBank(name string) bool {
	_, ok := bankSet[name]
	return ok
}
