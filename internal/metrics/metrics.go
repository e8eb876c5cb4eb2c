// Package metrics exposes prometheus counters for the ingestion and
// chat pipelines, served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsIngested counts finished ingestions by terminal status.
	DocumentsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docuchat_documents_ingested_total",
		Help: "Documents that reached a terminal ingestion status.",
	}, []string{"status"})

	// ChunksUpserted counts vector records written to the store.
	ChunksUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docuchat_chunks_upserted_total",
		Help: "Chunk vectors upserted into the vector store.",
	})

	// ChatTurns counts chat requests that produced a completion stream.
	ChatTurns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docuchat_chat_turns_total",
		Help: "Chat turns answered.",
	})

	// UpstreamErrors counts remote provider failures by provider name.
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docuchat_upstream_errors_total",
		Help: "Failed calls to remote providers.",
	}, []string{"provider"})
)
