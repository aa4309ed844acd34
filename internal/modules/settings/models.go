package settings

// Setting keys
const (
	// KeyShillerCAPE is the manually entered Shiller CAPE ratio
	KeyShillerCAPE = "shiller_cape"
	// KeyShillerCAPEAsOf is the date the CAPE value was entered (YYYY-MM-DD)
	KeyShillerCAPEAsOf = "shiller_cape_as_of"
)

// SettingDescriptions documents every key the dashboard reads
var SettingDescriptions = map[string]string{
	KeyShillerCAPE:     "Shiller CAPE ratio entered by hand, accepted between 5 and 50",
	KeyShillerCAPEAsOf: "Date the Shiller CAPE value was last updated",
}
