package repository

import (
	"encoding/json"
	"errors"

	"github.com/NiftyBay/market-engine/internal/elastic_search"
	"github.com/NiftyBay/market-engine/internal/entity"
	"github.com/olivere/elastic/v7"
)

var (
	ErrMarketActionNotFound = errors.New("market action not found")
)

type MarketActionRepository interface {
	GetActions(size, from int) ([]entity.MarketAction, int64, error)
	GetActionsByContract(contract string, size, from int) ([]entity.MarketAction, int64, error)
	GetActionsByItem(itemId uint64) ([]entity.MarketAction, error)
	GetLatestSale(contract string, tokenId uint64) (*entity.MarketAction, error)
}

type marketActionRepository struct {
	elastic elastic_search.Index
}

func NewMarketActionRepository(elastic elastic_search.Index) MarketActionRepository {
	return marketActionRepository{elastic}
}

func (r marketActionRepository) GetActions(size, from int) ([]entity.MarketAction, int64, error) {
	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Sort("createdAt", false).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r marketActionRepository) GetActionsByContract(contract string, size, from int) ([]entity.MarketAction, int64, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", contract),
	)

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(query).
		Sort("createdAt", false).
		Size(size).
		From(from))

	return r.findMany(results, err)
}

func (r marketActionRepository) GetActionsByItem(itemId uint64) ([]entity.MarketAction, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("itemId", itemId),
	)

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(query).
		Sort("createdAt", true).
		Size(100))

	actions, _, err := r.findMany(results, err)

	return actions, err
}

func (r marketActionRepository) GetLatestSale(contract string, tokenId uint64) (*entity.MarketAction, error) {
	query := elastic.NewBoolQuery().Must(
		elastic.NewTermQuery("contract.keyword", contract),
		elastic.NewTermQuery("tokenId", tokenId),
		elastic.NewTermQuery("action.keyword", string(entity.SaleAction)),
	)

	results, err := search(r.elastic.GetClient().
		Search(elastic_search.MarketActionIndex.Get()).
		Query(query).
		Sort("createdAt", false).
		Size(1))

	return r.findOne(results, err)
}

func (r marketActionRepository) findOne(results *elastic.SearchResult, err error) (*entity.MarketAction, error) {
	if err != nil {
		return nil, err
	}

	if len(results.Hits.Hits) == 0 {
		return nil, ErrMarketActionNotFound
	}

	var action entity.MarketAction
	hit := results.Hits.Hits[0]
	err = json.Unmarshal(hit.Source, &action)

	return &action, err
}

func (r marketActionRepository) findMany(results *elastic.SearchResult, err error) ([]entity.MarketAction, int64, error) {
	actions := make([]entity.MarketAction, 0)

	if err != nil {
		return actions, 0, err
	}

	for _, hit := range results.Hits.Hits {
		var action entity.MarketAction
		if err := json.Unmarshal(hit.Source, &action); err == nil {
			actions = append(actions, action)
		}
	}

	return actions, results.TotalHits(), nil
}
