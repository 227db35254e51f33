package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/NiftyBay/market-engine/internal/engine"
	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/NiftyBay/market-engine/internal/registry"
	"github.com/NiftyBay/market-engine/internal/repository"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Server struct {
	engine     engine.SettlementEngine
	actionRepo repository.MarketActionRepository
}

func NewServer(settlementEngine engine.SettlementEngine, actionRepo repository.MarketActionRepository) Server {
	return Server{settlementEngine, actionRepo}
}

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleHomepage).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/items", s.handleGetItems).Methods("GET")
	r.HandleFunc("/items/{itemId}", s.handleGetItem).Methods("GET")
	r.HandleFunc("/items/{itemId}/actions", s.handleGetItemActions).Methods("GET")
	r.HandleFunc("/actions", s.handleGetActions).Methods("GET")
	s.registerWriteRoutes(r)
	r.NotFoundHandler = notFoundHandler()

	return r
}

func (s Server) handleHomepage(w http.ResponseWriter, r *http.Request) {
	_, _ = fmt.Fprintf(w, "NiftyBay Market Engine")
}

func (s Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, map[string]string{"status": "ok"})
}

func (s Server) handleGetItems(w http.ResponseWriter, r *http.Request) {
	seller := r.URL.Query().Get("seller")

	status, err := getStatus(r)
	if err != nil {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	writeJson(w, s.engine.FetchMarketItems(seller, status))
}

func (s Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	listing, err := s.engine.GetListing(itemId)
	if err != nil {
		if errors.Is(err, registry.ErrItemNotFound) {
			http.Error(w, "Item not found", http.StatusNotFound)
			return
		}
		zap.L().With(zap.Error(err), zap.Uint64("itemId", itemId)).Error("Api: Failed to fetch item")
		http.Error(w, "Failed to fetch item", http.StatusInternalServerError)
		return
	}

	writeJson(w, listing)
}

func (s Server) handleGetItemActions(w http.ResponseWriter, r *http.Request) {
	itemId, err := getItemId(r)
	if err != nil {
		http.Error(w, "Invalid item id", http.StatusBadRequest)
		return
	}

	actions, err := s.actionRepo.GetActionsByItem(itemId)
	if err != nil {
		zap.L().With(zap.Error(err), zap.Uint64("itemId", itemId)).Error("Api: Failed to fetch item actions")
		http.Error(w, "Failed to fetch item actions", http.StatusInternalServerError)
		return
	}

	writeJson(w, actions)
}

func (s Server) handleGetActions(w http.ResponseWriter, r *http.Request) {
	size, page := getPagination(r)
	contract := r.URL.Query().Get("contract")

	var actions []entity.MarketAction
	var total int64
	var err error

	if contract != "" {
		actions, total, err = s.actionRepo.GetActionsByContract(contract, size, (page-1)*size)
	} else {
		actions, total, err = s.actionRepo.GetActions(size, (page-1)*size)
	}

	if err != nil {
		zap.L().With(zap.Error(err)).Error("Api: Failed to fetch actions")
		http.Error(w, "Failed to fetch actions", http.StatusInternalServerError)
		return
	}

	w.Header().Add("X-Total-Count", strconv.FormatInt(total, 10))
	writeJson(w, actions)
}

func getItemId(r *http.Request) (uint64, error) {
	itemId, ok := mux.Vars(r)["itemId"]
	if !ok {
		return 0, errors.New("invalid parameters")
	}

	return strconv.ParseUint(itemId, 10, 64)
}

func getStatus(r *http.Request) (entity.Status, error) {
	status := r.URL.Query().Get("status")

	switch status {
	case "":
		return "", nil
	case string(entity.StatusActive):
		return entity.StatusActive, nil
	case string(entity.StatusSold):
		return entity.StatusSold, nil
	case string(entity.StatusCancelled):
		return entity.StatusCancelled, nil
	}

	return "", errors.New("invalid status")
}

func getPagination(r *http.Request) (int, int) {
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil || size < 1 || size > 100 {
		size = 20
	}

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	return size, page
}

func writeJson(w http.ResponseWriter, data interface{}) {
	w.Header().Add("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().With(zap.Error(err)).Error("Api: Failed to encode response")
	}
}

func notFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		_, _ = fmt.Fprintf(w, "Page not found")
	})
}
