package entity

import "math/big"

// Notifications are emitted on the event boundary after a lifecycle
// transition has committed. They are consumed by off-chain indexing only,
// never by the engine itself.

type CreatedNotification struct {
	Listing Listing
}

type SoldNotification struct {
	Listing        Listing
	SellerProceeds *big.Int
	Royalty        *big.Int
	MarketFee      *big.Int
}

type CancelledNotification struct {
	Listing Listing
}
