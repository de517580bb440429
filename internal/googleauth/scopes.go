package googleauth

// SpreadsheetsScope is the only scope the adapter requests: full
// read/write access to spreadsheets the user can reach.
const SpreadsheetsScope = "https://www.googleapis.com/auth/spreadsheets"

// Scopes returns the scope set requested during authorization.
func Scopes() []string {
	return []string{SpreadsheetsScope}
}
