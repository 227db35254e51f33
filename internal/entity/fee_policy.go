package entity

// MaxBps is the whole of a sale price expressed in basis points.
const MaxBps uint16 = 10000

type FeePolicy struct {
	Contract       string `json:"contract"`
	RoyaltyAccount string `json:"royaltyAccount"`
	RoyaltyBps     uint16 `json:"royaltyBps"`
	MarketBps      uint16 `json:"marketBps"`
}

// Zero reports whether the policy is the unconfigured default.
func (p FeePolicy) Zero() bool {
	return p.RoyaltyAccount == "" && p.RoyaltyBps == 0 && p.MarketBps == 0
}
