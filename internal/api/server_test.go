package api

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NiftyBay/market-engine/internal/custody"
	"github.com/NiftyBay/market-engine/internal/engine"
	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/NiftyBay/market-engine/internal/feeconfig"
	"github.com/NiftyBay/market-engine/internal/ledger"
	"github.com/NiftyBay/market-engine/internal/payment"
	"github.com/NiftyBay/market-engine/internal/registry"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

type fakeActionRepo struct {
	actions []entity.MarketAction
}

func (r fakeActionRepo) GetActions(size, from int) ([]entity.MarketAction, int64, error) {
	return r.actions, int64(len(r.actions)), nil
}

func (r fakeActionRepo) GetActionsByContract(contract string, size, from int) ([]entity.MarketAction, int64, error) {
	return r.actions, int64(len(r.actions)), nil
}

func (r fakeActionRepo) GetActionsByItem(itemId uint64) ([]entity.MarketAction, error) {
	return r.actions, nil
}

func (r fakeActionRepo) GetLatestSale(contract string, tokenId uint64) (*entity.MarketAction, error) {
	return nil, nil
}

func newTestServer() (Server, engine.SettlementEngine, *custody.MemoryTokenContract) {
	token := custody.NewMemoryTokenContract()
	funds := ledger.NewFundLedger()

	settlementEngine := engine.NewSettlementEngine(
		registry.NewItemRegistry(),
		feeconfig.NewStore(),
		funds,
		custody.NewEscrowAdapter(token, "0xengine"),
		payment.NewDirectSplitter(funds, "0xengine", payment.DefaultFeeSkip),
		token,
		cache.New(5*time.Minute, 10*time.Minute),
		"0xowner",
		"0xengine",
	)

	server := NewServer(settlementEngine, fakeActionRepo{})

	return server, settlementEngine, token
}

func TestHandleHealth(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleGetItems(t *testing.T) {
	server, settlementEngine, token := newTestServer()
	token.Mint("0xcontract", 1, "0xseller")
	token.Mint("0xcontract", 2, "0xother")

	_, err := settlementEngine.CreateListing("0xseller", "0xcontract", 1, big.NewInt(100))
	assert.NoError(t, err)
	_, err = settlementEngine.CreateListing("0xother", "0xcontract", 2, big.NewInt(50))
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/items?seller=0xseller", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var listings []entity.Listing
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listings))
	assert.Len(t, listings, 1)
	assert.Equal(t, "0xseller", listings[0].Seller)
}

func TestHandleGetItems_InvalidStatus(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest("GET", "/items?status=bogus", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetItem(t *testing.T) {
	server, settlementEngine, token := newTestServer()
	token.Mint("0xcontract", 1, "0xseller")

	listing, err := settlementEngine.CreateListing("0xseller", "0xcontract", 1, big.NewInt(100))
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/items/1", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var found entity.Listing
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Equal(t, listing.Id, found.Id)
	assert.Equal(t, "100", found.Price.String())
}

func TestHandleGetItem_NotFound(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest("GET", "/items/99", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetItem_InvalidId(t *testing.T) {
	server, _, _ := newTestServer()

	req := httptest.NewRequest("GET", "/items/abc", nil)
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
