package matcher

// LookupTables holds the static identity data the clue extractor matches
// against. Tables are built once at startup and passed by reference; nothing
// mutates them after construction.
type LookupTables struct {
	// States maps valid two-letter region codes.
	States map[string]bool
	// Networks maps known broadcast network affiliation tokens.
	Networks map[string]bool
	// Stations maps a broadcast callsign (base form, no suffix) to its
	// locality. Only callsigns listed here are trusted without a hyphenated
	// suffix or parentheses.
	Stations map[string]Station
	// Stopwords lists ordinary 3-4 letter words that would otherwise pass
	// the callsign shape check. A stopword is never extracted as a callsign.
	Stopwords map[string]bool

	// cities indexes locality names back to their state for city lookups.
	cities map[string]string
}

// Station is the locality record for a known broadcast callsign.
type Station struct {
	City  string
	State string
}

// DefaultTables returns the built-in lookup tables.
func DefaultTables() *LookupTables {
	t := &LookupTables{
		States:    stateCodes,
		Networks:  networkTokens,
		Stations:  stations,
		Stopwords: callsignStopwords,
		cities:    make(map[string]string, len(stations)),
	}
	for _, st := range stations {
		t.cities[st.City] = st.State
	}
	return t
}

var stateCodes = map[string]bool{
	"al": true, "ak": true, "az": true, "ar": true, "ca": true, "co": true,
	"ct": true, "de": true, "fl": true, "ga": true, "hi": true, "id": true,
	"il": true, "in": true, "ia": true, "ks": true, "ky": true, "la": true,
	"me": true, "md": true, "ma": true, "mi": true, "mn": true, "ms": true,
	"mo": true, "mt": true, "ne": true, "nv": true, "nh": true, "nj": true,
	"nm": true, "ny": true, "nc": true, "nd": true, "oh": true, "ok": true,
	"or": true, "pa": true, "ri": true, "sc": true, "sd": true, "tn": true,
	"tx": true, "ut": true, "vt": true, "va": true, "wa": true, "wv": true,
	"wi": true, "wy": true, "dc": true, "pr": true,
}

var networkTokens = map[string]bool{
	"abc": true, "cbs": true, "nbc": true, "fox": true, "cw": true,
	"pbs": true, "ion": true, "mynetworktv": true, "telemundo": true,
	"univision": true, "unimas": true,
}

var stations = map[string]Station{
	"wkbw": {City: "buffalo", State: "ny"},
	"wivb": {City: "buffalo", State: "ny"},
	"wgrz": {City: "buffalo", State: "ny"},
	"wagt": {City: "augusta", State: "ga"},
	"wrdw": {City: "augusta", State: "ga"},
	"wjbf": {City: "augusta", State: "ga"},
	"ktwo": {City: "casper", State: "wy"},
	"kcwy": {City: "casper", State: "wy"},
	"wabc": {City: "new york", State: "ny"},
	"wnbc": {City: "new york", State: "ny"},
	"wcbs": {City: "new york", State: "ny"},
	"wnyw": {City: "new york", State: "ny"},
	"wpix": {City: "new york", State: "ny"},
	"kabc": {City: "los angeles", State: "ca"},
	"knbc": {City: "los angeles", State: "ca"},
	"kcbs": {City: "los angeles", State: "ca"},
	"kttv": {City: "los angeles", State: "ca"},
	"ktla": {City: "los angeles", State: "ca"},
	"wls":  {City: "chicago", State: "il"},
	"wgn":  {City: "chicago", State: "il"},
	"wbbm": {City: "chicago", State: "il"},
	"wmaq": {City: "chicago", State: "il"},
	"wttw": {City: "chicago", State: "il"},
	"kgo":  {City: "san francisco", State: "ca"},
	"kpix": {City: "san francisco", State: "ca"},
	"kron": {City: "san francisco", State: "ca"},
	"kntv": {City: "san francisco", State: "ca"},
	"wsb":  {City: "atlanta", State: "ga"},
	"wxia": {City: "atlanta", State: "ga"},
	"waga": {City: "atlanta", State: "ga"},
	"wfaa": {City: "dallas", State: "tx"},
	"kdfw": {City: "dallas", State: "tx"},
	"kxas": {City: "dallas", State: "tx"},
	"khou": {City: "houston", State: "tx"},
	"kprc": {City: "houston", State: "tx"},
	"ktrk": {City: "houston", State: "tx"},
	"wplg": {City: "miami", State: "fl"},
	"wsvn": {City: "miami", State: "fl"},
	"wtvj": {City: "miami", State: "fl"},
	"wfor": {City: "miami", State: "fl"},
	"komo": {City: "seattle", State: "wa"},
	"kiro": {City: "seattle", State: "wa"},
	"kcpq": {City: "seattle", State: "wa"},
	"kusa": {City: "denver", State: "co"},
	"kdvr": {City: "denver", State: "co"},
	"kmgh": {City: "denver", State: "co"},
	"kcnc": {City: "denver", State: "co"},
	"wdiv": {City: "detroit", State: "mi"},
	"wxyz": {City: "detroit", State: "mi"},
	"wjbk": {City: "detroit", State: "mi"},
	"wcco": {City: "minneapolis", State: "mn"},
	"kare": {City: "minneapolis", State: "mn"},
	"kstp": {City: "saint paul", State: "mn"},
	"wews": {City: "cleveland", State: "oh"},
	"wjw":  {City: "cleveland", State: "oh"},
	"wkyc": {City: "cleveland", State: "oh"},
	"wpvi": {City: "philadelphia", State: "pa"},
	"kyw":  {City: "philadelphia", State: "pa"},
	"wcau": {City: "philadelphia", State: "pa"},
	"wbz":  {City: "boston", State: "ma"},
	"wcvb": {City: "boston", State: "ma"},
	"whdh": {City: "boston", State: "ma"},
	"kmov": {City: "saint louis", State: "mo"},
	"ksdk": {City: "saint louis", State: "mo"},
	"kpho": {City: "phoenix", State: "az"},
	"knxv": {City: "phoenix", State: "az"},
	"ksaz": {City: "phoenix", State: "az"},
}

var callsignStopwords = map[string]bool{
	"week": true, "west": true, "wide": true, "wild": true, "will": true,
	"wind": true, "wine": true, "with": true, "wood": true, "word": true,
	"work": true, "what": true, "when": true, "wire": true, "wave": true,
	"keep": true, "kids": true, "kind": true, "king": true, "know": true,
	"kick": true, "key": true, "kit": true, "war": true, "way": true,
	"web": true, "win": true, "wow": true,
}
