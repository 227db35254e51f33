package elastic_search

import "go.uber.org/zap"

// ElasticLogger adapts the elastic client trace output onto zap.
type ElasticLogger struct{}

func (l ElasticLogger) Printf(format string, v ...interface{}) {
	zap.S().Debugf(format, v...)
}
