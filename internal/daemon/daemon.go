package daemon

import (
	"net/http"
	"time"

	"github.com/NiftyBay/market-engine/internal/api"
	"github.com/NiftyBay/market-engine/internal/config"
	"github.com/NiftyBay/market-engine/internal/elastic_search"
	"go.uber.org/zap"
)

// Daemon hosts the settlement engine: it installs the search mappings,
// flushes buffered market actions on a timer and serves the HTTP api.
type Daemon struct {
	elastic elastic_search.Index
	server  api.Server
}

func NewDaemon(elastic elastic_search.Index, server api.Server) *Daemon {
	return &Daemon{elastic, server}
}

func (d *Daemon) Execute() {
	d.elastic.InstallMappings()

	go d.flush()

	port := config.Get().ApiPort
	zap.L().With(zap.String("port", port)).Info("Market engine started")

	if err := http.ListenAndServe(":"+port, d.server.Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start api server")
	}
}

// flush drains buffered action index requests. BatchPersist only fires on a
// full buffer so a periodic full persist keeps quiet markets current.
func (d *Daemon) flush() {
	ticker := time.NewTicker(10 * time.Second)

	for range ticker.C {
		if persisted := d.elastic.Persist(); persisted != 0 {
			zap.L().With(zap.Int("actions", persisted)).Debug("Daemon: Persisted market actions")
		}
	}
}
