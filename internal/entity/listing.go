package entity

import (
	"fmt"
	"math/big"
	"time"

	"github.com/gosimple/slug"
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusSold      Status = "Sold"
	StatusCancelled Status = "Cancelled"
)

// Terminal reports whether no further lifecycle transition is legal.
func (s Status) Terminal() bool {
	return s == StatusSold || s == StatusCancelled
}

type Listing struct {
	Id       uint64   `json:"id"`
	Status   Status   `json:"status"`
	Contract string   `json:"contract"`
	TokenId  uint64   `json:"tokenId"`
	Seller   string   `json:"seller"`
	Owner    string   `json:"owner"`
	Price    *big.Int `json:"price"`
	Settled  bool     `json:"settled"`

	CreatedAt  time.Time `json:"createdAt"`
	ResolvedAt time.Time `json:"resolvedAt,omitempty"`
}

func (l Listing) Slug() string {
	return CreateListingSlug(l.Id)
}

func CreateListingSlug(itemId uint64) string {
	return slug.Make(fmt.Sprintf("listing-%d", itemId))
}
