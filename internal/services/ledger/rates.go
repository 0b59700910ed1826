package ledger

// Per-provider rate table, USD per 1,000 tokens. These are estimates for
// budget alerting, not billing reconciliation; the free-quota tier carries a
// zero rate. Rates are policy and tuned by operations, not a contract.
type rate struct {
	inPer1K  float64
	outPer1K float64
}

var rateTable = map[string]rate{
	"gemini": {inPer1K: 0, outPer1K: 0},
	"claude": {inPer1K: 0.0008, outPer1K: 0.004},
	"openai": {inPer1K: 0.00015, outPer1K: 0.0006},
}

// EstimateCost returns the estimated spend for one call. Unknown providers
// are charged at the most expensive known rate so a misconfigured adapter is
// over-counted rather than free.
func EstimateCost(provider string, tokensIn, tokensOut int) float64 {
	r, ok := rateTable[provider]
	if !ok {
		r = rate{inPer1K: 0.0008, outPer1K: 0.004}
	}
	return float64(tokensIn)/1000*r.inPer1K + float64(tokensOut)/1000*r.outPer1K
}
