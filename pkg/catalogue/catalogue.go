// Package catalogue holds the static reference data for the tracked symbols.
package catalogue

// Company is the static metadata shown next to a quote.
type Company struct {
	Symbol string
	Name   string
	Sector string
}

const UnknownSector = "Unclassified"

var companies = []Company{
	// Tech giants
	{"AAPL", "Apple", "Technology"},
	{"MSFT", "Microsoft", "Technology"},
	{"GOOGL", "Alphabet (Google)", "Technology"},
	{"AMZN", "Amazon", "E-Commerce"},
	{"NVDA", "NVIDIA", "Technology"},
	{"TSLA", "Tesla", "Automotive"},
	{"META", "Meta Platforms", "Technology"},
	{"AMD", "Advanced Micro Devices", "Technology"},
	{"INTC", "Intel", "Technology"},
	{"CRM", "Salesforce", "Technology"},
	{"ORCL", "Oracle", "Technology"},
	{"ADBE", "Adobe", "Technology"},
	{"QCOM", "Qualcomm", "Technology"},
	// Finance & payments
	{"JPM", "JPMorgan Chase", "Financial Services"},
	{"V", "Visa", "Financial Services"},
	{"MA", "Mastercard", "Financial Services"},
	{"BAC", "Bank of America", "Financial Services"},
	{"WFC", "Wells Fargo", "Financial Services"},
	{"GS", "Goldman Sachs", "Financial Services"},
	{"MS", "Morgan Stanley", "Financial Services"},
	{"C", "Citigroup", "Financial Services"},
	{"PYPL", "PayPal", "Fintech"},
	{"SQ", "Block (formerly Square)", "Fintech"},
	// Healthcare
	{"JNJ", "Johnson & Johnson", "Healthcare"},
	{"UNH", "UnitedHealth", "Healthcare"},
	{"PFE", "Pfizer", "Healthcare"},
	{"LLY", "Eli Lilly", "Healthcare"},
	{"MRK", "Merck", "Healthcare"},
	{"ABBV", "AbbVie", "Healthcare"},
	{"TMO", "Thermo Fisher Scientific", "Healthcare"},
	{"MDT", "Medtronic", "Healthcare"},
	{"GILD", "Gilead Sciences", "Healthcare"},
	{"ISRG", "Intuitive Surgical", "Healthcare"},
	// Consumer
	{"WMT", "Walmart", "Retail"},
	{"PG", "Procter & Gamble", "Consumer Goods"},
	{"HD", "Home Depot", "Retail"},
	{"COST", "Costco", "Retail"},
	{"NKE", "Nike", "Apparel"},
	{"KO", "Coca-Cola", "Beverages"},
	{"PEP", "PepsiCo", "Beverages"},
	{"MCD", "McDonald's", "Restaurants"},
	{"SBUX", "Starbucks", "Restaurants"},
	{"TGT", "Target", "Retail"},
	{"DIS", "Walt Disney", "Media & Entertainment"},
	// Energy
	{"XOM", "Exxon Mobil", "Energy"},
	{"CVX", "Chevron", "Energy"},
	{"SHEL", "Shell", "Energy"},
	{"TTE", "TotalEnergies", "Energy"},
	{"COP", "ConocoPhillips", "Energy"},
	// Industrials
	{"BA", "Boeing", "Aerospace & Defense"},
	{"CAT", "Caterpillar", "Heavy Industry"},
	{"HON", "Honeywell", "Industrial Conglomerates"},
	{"GE", "General Electric", "Industrial Conglomerates"},
	{"UPS", "UPS", "Logistics"},
	{"RTX", "RTX (Raytheon)", "Aerospace & Defense"},
	{"LMT", "Lockheed Martin", "Aerospace & Defense"},
	// Communications & media
	{"NFLX", "Netflix", "Media & Entertainment"},
	{"CMCSA", "Comcast", "Media & Entertainment"},
	{"TMUS", "T-Mobile", "Telecom"},
	{"VZ", "Verizon", "Telecom"},
	// Materials
	{"LIN", "Linde", "Chemicals"},
	{"APD", "Air Products", "Chemicals"},
	{"SHW", "Sherwin-Williams", "Chemicals"},
	// Real estate
	{"AMT", "American Tower", "Real Estate"},
	{"PLD", "Prologis", "Real Estate"},
	{"EQIX", "Equinix", "Real Estate"},
	// Utilities
	{"NEE", "NextEra Energy", "Utilities"},
	{"DUK", "Duke Energy", "Utilities"},
	{"SO", "Southern Company", "Utilities"},
	// Mid & small cap / growth
	{"ETSY", "Etsy", "E-Commerce"},
	{"PTON", "Peloton", "Fitness Equipment"},
	{"ROKU", "Roku", "Digital Media"},
	{"ZM", "Zoom", "Technology"},
	{"SPCE", "Virgin Galactic", "Space"},
	{"PLTR", "Palantir", "Software"},
	{"SNOW", "Snowflake", "Software"},
	{"U", "Unity Software", "Software"},
	{"RBLX", "Roblox", "Gaming"},
	{"AFRM", "Affirm", "Fintech"},
	{"SHOP", "Shopify", "E-Commerce"},
	// Speculative & penny
	{"AMC", "AMC Entertainment", "Entertainment"},
	{"GME", "GameStop", "Retail"},
	{"BB", "BlackBerry", "Software"},
	{"SNDL", "Sundial Growers", "Cannabis"},
	{"PLUG", "Plug Power", "Clean Energy"},
	{"FCEL", "FuelCell Energy", "Clean Energy"},
	{"NOK", "Nokia", "Telecom"},
	{"F", "Ford", "Automotive"},
	{"AAL", "American Airlines", "Airlines"},
	{"CCL", "Carnival Corp", "Travel"},
	{"MRO", "Marathon Oil", "Energy"},
	{"ZNGA", "Zynga", "Gaming"},
	{"WKHS", "Workhorse", "Electric Vehicles"},
	{"RIDE", "Lordstown Motors", "Electric Vehicles"},
	{"WISH", "ContextLogic", "E-Commerce"},
	{"CLOV", "Clover Health", "Healthcare"},
	{"SOFI", "SoFi Technologies", "Fintech"},
	{"OPEN", "Opendoor", "Real Estate"},
	{"TLRY", "Tilray", "Cannabis"},
	{"ACB", "Aurora Cannabis", "Cannabis"},
	{"HEXO", "HEXO Corp", "Cannabis"},
	{"OCGN", "Ocugen", "Biotech"},
	{"NIO", "NIO", "Electric Vehicles"},
	{"XPEV", "XPeng", "Electric Vehicles"},
	{"LI", "Li Auto", "Electric Vehicles"},
	{"RIVN", "Rivian", "Electric Vehicles"},
	{"LCID", "Lucid Motors", "Electric Vehicles"},
}

var lowPrice = set("SNDL", "AMC", "BB", "PLUG", "FCEL", "NOK", "F", "AAL", "CCL", "MRO", "ZNGA",
	"WKHS", "RIDE", "WISH", "CLOV", "ACB", "HEXO", "OCGN")

var megaCap = set("AAPL", "MSFT", "GOOGL", "AMZN", "NVDA")

var bySymbol = func() map[string]Company {
	m := make(map[string]Company, len(companies))
	for _, c := range companies {
		m[c.Symbol] = c
	}
	return m
}()

// Symbols returns the tracked symbols in catalogue order.
func Symbols() []string {
	out := make([]string, len(companies))
	for i, c := range companies {
		out[i] = c.Symbol
	}
	return out
}

// Lookup returns the metadata for symbol. Unknown symbols get their own ticker as name.
func Lookup(symbol string) (Company, bool) {
	c, ok := bySymbol[symbol]
	if !ok {
		return Company{Symbol: symbol, Name: symbol, Sector: UnknownSector}, false
	}
	return c, true
}

// IsLowPrice marks symbols that trade in the penny range.
func IsLowPrice(symbol string) bool { return lowPrice[symbol] }

// IsMegaCap marks symbols whose market cap is in the trillions.
func IsMegaCap(symbol string) bool { return megaCap[symbol] }

func set(symbols ...string) map[string]bool {
	m := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		m[s] = true
	}
	return m
}
