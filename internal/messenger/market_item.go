package messenger

// MarketItem is the wire payload published on listing lifecycle queues.
type MarketItem struct {
	ItemId   uint64 `json:"itemId"`
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
}
