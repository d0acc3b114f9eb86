package indicators

// Entity is one tracked country: its ISO3 code, the display name used
// to match scraped tables, and the two-letter source-country code used
// by the media APIs.
type Entity struct {
	Code       string
	Name       string
	SourceCode string
}

// entities is the fixed processing universe. Order is stable so runs
// and reports are reproducible.
var entities = []Entity{
	{"USA", "United States", "US"},
	{"CHN", "China", "CN"},
	{"IND", "India", "IN"},
	{"BRA", "Brazil", "BR"},
	{"RUS", "Russia", "RU"},
	{"JPN", "Japan", "JP"},
	{"DEU", "Germany", "DE"},
	{"GBR", "United Kingdom", "GB"},
	{"CAN", "Canada", "CA"},
	{"FRA", "France", "FR"},
	{"ITA", "Italy", "IT"},
	{"AUS", "Australia", "AU"},
	{"MEX", "Mexico", "MX"},
	{"KOR", "South Korea", "KR"},
	{"SAU", "Saudi Arabia", "SA"},
	{"TUR", "Turkey", "TR"},
	{"EGY", "Egypt", "EG"},
	{"NGA", "Nigeria", "NG"},
	{"PAK", "Pakistan", "PK"},
	{"IDN", "Indonesia", "ID"},
	{"VNM", "Vietnam", "VN"},
	{"PHL", "Philippines", "PH"},
	{"ARG", "Argentina", "AR"},
	{"COL", "Colombia", "CO"},
	{"POL", "Poland", "PL"},
	{"ESP", "Spain", "ES"},
	{"IRN", "Iran", "IR"},
	{"ZAF", "South Africa", "ZA"},
	{"UKR", "Ukraine", "UA"},
	{"THA", "Thailand", "TH"},
	{"VEN", "Venezuela", "VE"},
	{"CHL", "Chile", "CL"},
	{"PER", "Peru", "PE"},
	{"MYS", "Malaysia", "MY"},
	{"ROU", "Romania", "RO"},
	{"SWE", "Sweden", "SE"},
	{"BEL", "Belgium", "BE"},
	{"NLD", "Netherlands", "NL"},
	{"GRC", "Greece", "GR"},
	{"CZE", "Czech Republic", "CZ"},
	{"PRT", "Portugal", "PT"},
	{"DNK", "Denmark", "DK"},
	{"FIN", "Finland", "FI"},
	{"NOR", "Norway", "NO"},
	{"SGP", "Singapore", "SG"},
	{"AUT", "Austria", "AT"},
	{"CHE", "Switzerland", "CH"},
	{"IRL", "Ireland", "IE"},
	{"NZL", "New Zealand", "NZ"},
	{"HKG", "Hong Kong", "HK"},
	{"ISR", "Israel", "IL"},
	{"ARE", "United Arab Emirates", "AE"},
}

// Entities returns the full processing universe in stable order.
func Entities() []Entity {
	out := make([]Entity, len(entities))
	copy(out, entities)
	return out
}

// Codes returns the ISO3 codes of the full universe in stable order.
func Codes() []string {
	codes := make([]string, len(entities))
	for i, e := range entities {
		codes[i] = e.Code
	}
	return codes
}

// Names maps ISO3 codes to display names.
func Names() map[string]string {
	names := make(map[string]string, len(entities))
	for _, e := range entities {
		names[e.Code] = e.Name
	}
	return names
}

// SourceCodes maps ISO3 codes to two-letter media source-country codes.
func SourceCodes() map[string]string {
	codes := make(map[string]string, len(entities))
	for _, e := range entities {
		codes[e.Code] = e.SourceCode
	}
	return codes
}
