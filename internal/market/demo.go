package market

import "time"

// demoQuotes fabricates plausible quotes deterministically from the
// symbol text, so the UI stays populated while the feed is unreachable.
func demoQuotes(symbols []string, now time.Time) []Quote {
	quotes := make([]Quote, 0, len(symbols))
	for _, sym := range symbols {
		h := fnv32(sym)
		price := 20 + float64(h%48000)/100       // 20.00 .. 499.99
		change := float64(int32(h>>8)%500) / 100 // -4.99 .. 4.99
		quotes = append(quotes, Quote{
			Symbol:    sym,
			Price:     price,
			Change:    change,
			ChangePct: change / price * 100,
			Volume:    int64(1_000_000 + h%9_000_000),
			Timestamp: now.UTC(),
		})
	}
	return quotes
}

func fnv32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
