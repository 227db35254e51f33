package api

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"github.com/NiftyBay/market-engine/internal/custody"
	"github.com/NiftyBay/market-engine/internal/engine"
	"github.com/NiftyBay/market-engine/internal/feeconfig"
	"github.com/NiftyBay/market-engine/internal/payment"
	"github.com/NiftyBay/market-engine/internal/registry"
	"github.com/gorilla/mux"
)

type createListingRequest struct {
	Seller   string `json:"seller"`
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	Price    string `json:"price"`
}

type purchaseRequest struct {
	Buyer    string `json:"buyer"`
	Contract string `json:"contract"`
	Payment  string `json:"payment"`
}

type batchPurchaseRequest struct {
	Buyer        string   `json:"buyer"`
	Contracts    []string `json:"contracts"`
	ItemIds      []uint64 `json:"itemIds"`
	TotalPayment string   `json:"totalPayment"`
}

type cancelRequest struct {
	Caller string `json:"caller"`
	Force  bool   `json:"force"`
}

type feePolicyRequest struct {
	Caller         string `json:"caller"`
	Contract       string `json:"contract"`
	RoyaltyAccount string `json:"royaltyAccount"`
	RoyaltyBps     uint16 `json:"royaltyBps"`
	MarketBps      uint16 `json:"marketBps"`
}

type withdrawRequest struct {
	Caller string `json:"caller"`
}

type depositRequest struct {
	Amount string `json:"amount"`
}

func (s Server) registerWriteRoutes(r *mux.Router) {
	r.HandleFunc("/items", s.handleCreateListing).Methods("POST")
	r.HandleFunc("/items/{itemId}/purchase", s.handlePurchase).Methods("POST")
	r.HandleFunc("/items/{itemId}/cancel", s.handleCancel).Methods("POST")
	r.HandleFunc("/purchases", s.handleBatchPurchase).Methods("POST")
	r.HandleFunc("/admin/fees", s.handleSetFeePolicy).Methods("POST")
	r.HandleFunc("/admin/withdraw", s.handleWithdraw).Methods("POST")
	r.HandleFunc("/accounts/{account}/deposit", s.handleDeposit).Methods("POST")
	r.HandleFunc("/accounts/{account}/balance", s.handleGetBalance).Methods("GET")
}

func (s Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	price, ok := new(big.Int).SetString(req.Price, 10)
	if !ok {
		http.Error(w, "Invalid price", http.StatusBadRequest)
		return
	}

	listing, err := s.engine.CreateListing(req.Seller, req.Contract, req.TokenId, price)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJson(w, listing)
}

func (s Server) handlePurchase(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	var req purchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	pay, ok := new(big.Int).SetString(req.Payment, 10)
	if !ok {
		http.Error(w, "Invalid payment", http.StatusBadRequest)
		return
	}

	listing, err := s.engine.Purchase(req.Buyer, req.Contract, itemId, pay)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJson(w, listing)
}

func (s Server) handleBatchPurchase(w http.ResponseWriter, r *http.Request) {
	var req batchPurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	total, ok := new(big.Int).SetString(req.TotalPayment, 10)
	if !ok {
		http.Error(w, "Invalid payment", http.StatusBadRequest)
		return
	}

	listings, err := s.engine.PurchaseMany(req.Buyer, req.Contracts, req.ItemIds, total)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJson(w, listings)
}

func (s Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var listing interface{}
	if req.Force {
		listing, err = s.engine.ForceCancel(req.Caller, itemId)
	} else {
		listing, err = s.engine.Cancel(req.Caller, itemId)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJson(w, listing)
}

func (s Server) handleSetFeePolicy(w http.ResponseWriter, r *http.Request) {
	var req feePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	err := s.engine.SetFeePolicy(req.Caller, req.Contract, req.RoyaltyAccount, req.RoyaltyBps, req.MarketBps)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJson(w, map[string]string{"status": "ok"})
}

func (s Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount, err := s.engine.Withdraw(req.Caller)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJson(w, map[string]string{"amount": amount.String()})
}

func (s Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	account, ok := mux.Vars(r)["account"]
	if !ok || account == "" {
		http.Error(w, "Invalid account", http.StatusBadRequest)
		return
	}

	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	amount, valid := new(big.Int).SetString(req.Amount, 10)
	if !valid || amount.Sign() != 1 {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	s.engine.Deposit(account, amount)

	writeJson(w, map[string]string{"balance": s.engine.BalanceOf(account).String()})
}

func (s Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := mux.Vars(r)["account"]
	if !ok || account == "" {
		http.Error(w, "Invalid account", http.StatusBadRequest)
		return
	}

	writeJson(w, map[string]string{"balance": s.engine.BalanceOf(account).String()})
}

func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, engine.ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, registry.ErrInvalidState):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrReentrantCall):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, engine.ErrInvalidInput),
		errors.Is(err, payment.ErrWrongPaymentAmount),
		errors.Is(err, feeconfig.ErrInvalidRates):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, payment.ErrTransferFailed),
		errors.Is(err, custody.ErrCustodyTransferFailed),
		errors.Is(err, custody.ErrNotCustodian):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
