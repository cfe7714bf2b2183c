package auth

const (
	PermCalculate       = "calculator.use"
	PermRateTablesRead  = "rate_tables.read"
	PermRateTablesWrite = "rate_tables.write"
	PermAuditRead       = "audit.read"
)

var DefaultPermissions = []string{
	PermCalculate,
	PermRateTablesRead,
	PermRateTablesWrite,
	PermAuditRead,
}

// DefaultClientPermissions are granted to a client whose API_CLIENTS entry lists none.
var DefaultClientPermissions = []string{PermCalculate, PermRateTablesRead}

func knownPermission(perm string) bool {
	for _, candidate := range DefaultPermissions {
		if candidate == perm {
			return true
		}
	}
	return false
}
