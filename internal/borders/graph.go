package borders

// Graph maps an entity to its land neighbors by ISO3 code. Neighbors
// outside the processing universe are listed anyway; propagation skips
// whatever has no result.
type Graph map[string][]string

// Neighbors returns the adjacency list for one entity. Islands and
// unknown entities get an empty list.
func (g Graph) Neighbors(entityCode string) []string {
	return g[entityCode]
}

// DefaultGraph returns the static land-border adjacency used for
// pressure propagation.
func DefaultGraph() Graph {
	return Graph{
		"USA": {"CAN", "MEX"},
		"CAN": {"USA"},
		"MEX": {"USA", "GTM", "BLZ"},
		"RUS": {"CHN", "UKR", "FIN", "NOR", "POL", "LTU", "LVA", "EST", "BLR", "GEO", "AZE", "KAZ", "MNG", "PRK"},
		"CHN": {"RUS", "IND", "KOR", "VNM", "MYS", "PAK", "IDN"},
		"IND": {"CHN", "PAK", "NPL", "BTN", "MMR", "BGD"},
		"BRA": {"ARG", "COL", "VEN", "PER", "BOL", "PRY", "URY"},
		"UKR": {"RUS", "POL", "ROU", "SVK", "HUN", "MDA", "BLR"},
		"DEU": {"FRA", "POL", "CZE", "AUT", "CHE", "LUX", "BEL", "NLD", "DNK"},
		"FRA": {"DEU", "ESP", "ITA", "CHE", "LUX", "BEL"},
		"ESP": {"FRA", "PRT"},
		"ITA": {"FRA", "CHE", "AUT", "SVN", "HRV"},
		"GBR": {"IRL"},
		"JPN": {},
		"KOR": {"PRK", "CHN"},
		"TUR": {"SYR", "IRQ", "IRN", "ARM", "GEO", "GRC", "BGR"},
		"IRN": {"TUR", "IRQ", "PAK", "AFG", "TKM", "ARM", "AZE"},
		"IDN": {"MYS", "TLS", "PNG"},
		"EGY": {"ISR", "SDN", "LBY"},
		"NGA": {"BEN", "NER", "CMR", "TCD"},
		"PAK": {"IND", "IRN", "AFG", "CHN"},
		"VNM": {"CHN", "LAO", "KHM"},
		"PHL": {},
		"ARG": {"BRA", "CHL", "BOL", "PRY", "URY"},
		"COL": {"BRA", "VEN", "ECU", "PAN", "PER"},
		"POL": {"DEU", "CZE", "SVK", "UKR", "BLR", "RUS", "LTU"},
		"ZAF": {"NAM", "BWA", "ZWE", "MOZ", "SWZ", "LSO"},
		"THA": {"LAO", "MMR", "KHM", "MYS"},
		"VEN": {"BRA", "COL", "GUY"},
		"CHL": {"ARG", "BOL", "PER"},
		"PER": {"BRA", "COL", "ECU", "BOL", "CHL"},
		"MYS": {"THA", "IDN", "SGP"},
		"ROU": {"BGR", "SRB", "HUN", "UKR", "MDA"},
		"SWE": {"NOR", "FIN"},
		"BEL": {"FRA", "DEU", "NLD", "LUX"},
		"NLD": {"BEL", "DEU"},
		"GRC": {"ALB", "MKD", "BGR", "TUR"},
		"CZE": {"DEU", "POL", "AUT", "SVK"},
		"PRT": {"ESP"},
		"DNK": {"DEU"},
		"FIN": {"SWE", "NOR", "RUS"},
		"NOR": {"SWE", "FIN", "RUS"},
		"SGP": {"MYS"},
		"AUT": {"DEU", "CHE", "ITA", "SVN", "HRV", "HUN", "SVK", "CZE"},
		"CHE": {"DEU", "FRA", "ITA", "AUT"},
		"IRL": {"GBR"},
		"NZL": {},
		"HKG": {"CHN"},
		"ISR": {"EGY", "JOR", "SYR", "LBN"},
		"ARE": {"OMN", "SAU"},
		"SAU": {"ARE", "IRQ", "JOR", "OMN", "YEM", "QAT", "KWT"},
		"AUS": {},
	}
}
