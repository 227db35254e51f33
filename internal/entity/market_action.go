package entity

import (
	"crypto/md5"
	"fmt"
	"time"
)

type MarketAction struct {
	ItemId    uint64     `json:"itemId"`
	Contract  string     `json:"contract"`
	TokenId   uint64     `json:"tokenId"`
	Action    ActionType `json:"action"`
	Seller    string     `json:"seller"`
	Buyer     string     `json:"buyer"`
	Cost      string     `json:"cost"`
	Fee       string     `json:"fee"`
	Royalty   string     `json:"royalty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type ActionType string

const (
	ListingAction   ActionType = "listing"
	SaleAction      ActionType = "sale"
	DelistingAction ActionType = "delisting"
)

func (a MarketAction) Slug() string {
	return CreateMarketActionSlug(a.ItemId, a.Contract, a.TokenId, string(a.Action))
}

func CreateMarketActionSlug(itemId uint64, contract string, tokenId uint64, action string) string {
	data := []byte(fmt.Sprintf("marketaction-%d-%s-%d-%s", itemId, contract, tokenId, action))
	return fmt.Sprintf("%x", md5.Sum(data))
}
