package quant

// The fixed lexicons below define the behavior of the text extraction
// engine entirely. Matching is case-insensitive substring matching over
// the raw text; there is no grammar. Changing any entry changes
// documented behavior and requires new golden tests.

var bullishKeywords = []string{
	"bullish",
	"buy",
	"upside",
	"breakout",
	"uptrend",
	"rally",
	"accumulate",
	"outperform",
	"golden cross",
	"higher highs",
	"oversold",
	"undervalued",
}

var bearishKeywords = []string{
	"bearish",
	"sell",
	"downside",
	"breakdown",
	"downtrend",
	"correction",
	"distribute",
	"underperform",
	"death cross",
	"lower lows",
	"overbought",
	"overvalued",
}

var neutralKeywords = []string{
	"neutral",
	"sideways",
	"range-bound",
	"consolidation",
	"choppy",
	"indecision",
	"wait-and-see",
	"mixed signals",
	"no clear direction",
	"hold",
}

// Confidence modifiers: +10 per high-confidence occurrence, -10 per
// low-confidence occurrence, starting from 50.
var highConfidenceKeywords = []string{
	"strong",
	"clear",
	"decisive",
	"confident",
	"convincing",
	"confirmed",
	"definitive",
}

var lowConfidenceKeywords = []string{
	"weak",
	"possible",
	"might",
	"uncertain",
	"tentative",
	"cautious",
}

// patternCatalogue names the recognized chart and candlestick patterns.
// Extraction reports matches in catalogue order, not text order.
var patternCatalogue = []string{
	"head and shoulders",
	"inverse head and shoulders",
	"double top",
	"double bottom",
	"triple top",
	"triple bottom",
	"ascending triangle",
	"descending triangle",
	"symmetrical triangle",
	"bull flag",
	"bear flag",
	"pennant",
	"cup and handle",
	"rising wedge",
	"falling wedge",
	"rounding bottom",
	"rounding top",
	"channel",
	"breakout",
	"breakdown",
	"gap up",
	"gap down",
	"doji",
	"hammer",
	"inverted hammer",
	"shooting star",
	"bullish engulfing",
	"bearish engulfing",
	"morning star",
	"evening star",
	"golden cross",
	"death cross",
}
