package api

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/stretchr/testify/assert"
)

func TestHandleCreateListing(t *testing.T) {
	server, _, token := newTestServer()
	token.Mint("0xcontract", 1, "0xseller")

	body := `{"seller":"0xseller","contract":"0xcontract","tokenId":1,"price":"100"}`
	req := httptest.NewRequest("POST", "/items", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var listing entity.Listing
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, uint64(1), listing.Id)
	assert.Equal(t, entity.StatusActive, listing.Status)
}

func TestHandleCreateListing_BadPrice(t *testing.T) {
	server, _, token := newTestServer()
	token.Mint("0xcontract", 1, "0xseller")

	body := `{"seller":"0xseller","contract":"0xcontract","tokenId":1,"price":"lots"}`
	req := httptest.NewRequest("POST", "/items", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePurchase(t *testing.T) {
	server, settlementEngine, token := newTestServer()
	token.Mint("0xcontract", 1, "0xseller")

	_, err := settlementEngine.CreateListing("0xseller", "0xcontract", 1, big.NewInt(100))
	assert.NoError(t, err)
	settlementEngine.Deposit("0xbuyer", big.NewInt(100))

	body := `{"buyer":"0xbuyer","contract":"0xcontract","payment":"100"}`
	req := httptest.NewRequest("POST", "/items/1/purchase", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var listing entity.Listing
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, entity.StatusSold, listing.Status)
	assert.Equal(t, "0xbuyer", listing.Owner)
}

func TestHandlePurchase_WrongPayment(t *testing.T) {
	server, settlementEngine, token := newTestServer()
	token.Mint("0xcontract", 1, "0xseller")

	_, err := settlementEngine.CreateListing("0xseller", "0xcontract", 1, big.NewInt(100))
	assert.NoError(t, err)
	settlementEngine.Deposit("0xbuyer", big.NewInt(100))

	body := `{"buyer":"0xbuyer","contract":"0xcontract","payment":"99"}`
	req := httptest.NewRequest("POST", "/items/1/purchase", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCancel_Unauthorized(t *testing.T) {
	server, settlementEngine, token := newTestServer()
	token.Mint("0xcontract", 1, "0xseller")

	_, err := settlementEngine.CreateListing("0xseller", "0xcontract", 1, big.NewInt(100))
	assert.NoError(t, err)

	body := `{"caller":"0xstranger"}`
	req := httptest.NewRequest("POST", "/items/1/cancel", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleWithdraw_Forbidden(t *testing.T) {
	server, _, _ := newTestServer()

	body := `{"caller":"0xstranger"}`
	req := httptest.NewRequest("POST", "/admin/withdraw", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleDepositAndBalance(t *testing.T) {
	server, _, _ := newTestServer()

	body := `{"amount":"250"}`
	req := httptest.NewRequest("POST", "/accounts/0xbuyer/deposit", strings.NewReader(body))
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest("GET", "/accounts/0xbuyer/balance", nil)
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "250")
}
