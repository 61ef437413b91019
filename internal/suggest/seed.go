package suggest

// seedSymbols is the built-in suggestion set, used until (and whenever)
// the backend symbol list cannot be fetched.
var seedSymbols = []Symbol{
	{Ticker: "AAPL", Name: "Apple Inc.", Sector: "Technology"},
	{Ticker: "MSFT", Name: "Microsoft Corporation", Sector: "Technology"},
	{Ticker: "GOOGL", Name: "Alphabet Inc.", Sector: "Communication Services"},
	{Ticker: "AMZN", Name: "Amazon.com, Inc.", Sector: "Consumer Discretionary"},
	{Ticker: "NVDA", Name: "NVIDIA Corporation", Sector: "Technology"},
	{Ticker: "META", Name: "Meta Platforms, Inc.", Sector: "Communication Services"},
	{Ticker: "TSLA", Name: "Tesla, Inc.", Sector: "Consumer Discretionary"},
	{Ticker: "BRK.B", Name: "Berkshire Hathaway Inc.", Sector: "Financials"},
	{Ticker: "JPM", Name: "JPMorgan Chase & Co.", Sector: "Financials"},
	{Ticker: "V", Name: "Visa Inc.", Sector: "Financials"},
	{Ticker: "JNJ", Name: "Johnson & Johnson", Sector: "Health Care"},
	{Ticker: "UNH", Name: "UnitedHealth Group Incorporated", Sector: "Health Care"},
	{Ticker: "XOM", Name: "Exxon Mobil Corporation", Sector: "Energy"},
	{Ticker: "SPY", Name: "SPDR S&P 500 ETF Trust", Sector: "ETF"},
	{Ticker: "QQQ", Name: "Invesco QQQ Trust", Sector: "ETF"},
	{Ticker: "AMD", Name: "Advanced Micro Devices, Inc.", Sector: "Technology"},
	{Ticker: "NFLX", Name: "Netflix, Inc.", Sector: "Communication Services"},
	{Ticker: "DIS", Name: "The Walt Disney Company", Sector: "Communication Services"},
	{Ticker: "BA", Name: "The Boeing Company", Sector: "Industrials"},
	{Ticker: "KO", Name: "The Coca-Cola Company", Sector: "Consumer Staples"},
}
