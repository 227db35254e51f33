package elastic_search

import (
	"fmt"

	"github.com/NiftyBay/market-engine/internal/config"
)

type Indices string

var (
	MarketActionIndex Indices = "marketaction"
)

// Sets the network and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Network, config.Get().Index, string(*i))
}
