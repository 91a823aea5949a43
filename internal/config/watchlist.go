package config

// Curated default universe: high-beta names where catalyst-driven
// swings actually happen. Order is preserved through the resolver.

var defaultWatchlistUS = []string{
	// Semis / AI
	"NVDA", "AMD", "SMCI", "ARM", "AVGO", "MRVL", "MU",
	"PLTR", "AI", "SOUN", "UPST",
	"PATH", "SNOW", "DDOG", "NET", "CRWD", "ZS",
	"IONQ", "RGTI", "QUBT",
	"RKLB", "LUNR", "RDW",
	// High beta growth
	"TSLA", "RIVN", "LCID", "NIO", "XPEV", "LI",
	"COIN", "MSTR", "MARA", "RIOT", "CLSK", "HUT",
	"SHOP", "SQ", "AFRM", "SOFI", "HOOD", "NU",
	"ROKU", "TTD", "MGNI", "PUBM",
	"RBLX", "U", "TTWO", "EA",
	// Small/mid momentum
	"APLD", "BTBT", "WULF", "CIFR", "IREN",
	"GEVO", "BE", "PLUG", "FCEL", "BLDP",
	"JOBY", "ACHR", "EVTL",
	"DNA", "CRSP", "BEAM", "EDIT", "NTLA",
	"RXRX", "SDGR", "ABCL",
	"XMTR", "NNDM", "SSYS",
	"OPEN", "CVNA", "CARG", "CHPT",
	"ASTS", "IRDM", "GSAT",
	// Speculative biotech
	"MRNA", "BNTX", "NVAX",
	"SAVA", "ACIU", "PRTA",
	"SRPT", "VRTX",
	"IONS", "ALNY", "ARWR",
	"AXSM", "CPRX",
	"PTGX", "KRYS", "IMVT", "MDGL",
	// High short interest
	"GME", "AMC", "KOSS",
	"BYND", "LMND",
	"GOEV", "WKHS",
	"SPCE", "LAZR",
	// Recent IPOs / growth stories
	"RDDT", "DUOL", "CART", "TOST",
	"KVYO", "BIRK", "ONON", "CAVA",
	"VRT", "INTA", "IOT",
	"GRAB", "SE", "BABA", "JD", "PDD",
}

var defaultWatchlistEU = []string{
	"ASML", "SAP", "NVO",
	"SPOT", "FVRR", "WIX",
}
