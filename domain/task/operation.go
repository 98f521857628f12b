// Package task describes the stages of an ingestion run and their progress.
package task

import "strings"

// Operation names one stage of an ingestion run.
type Operation string

// Operation values, one per ingestion stage under the root run.
const (
	OperationIngest         Operation = "moviesearch.ingest"
	OperationReset          Operation = "moviesearch.ingest.reset"
	OperationLoadMovies     Operation = "moviesearch.ingest.load_movies"
	OperationLoadRatings    Operation = "moviesearch.ingest.load_ratings"
	OperationLoadTags       Operation = "moviesearch.ingest.load_tags"
	OperationAggregateTags  Operation = "moviesearch.ingest.aggregate_tags"
	OperationEmbedDocuments Operation = "moviesearch.ingest.embed_documents"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// Stage returns the last dotted segment, e.g. "load_movies".
func (o Operation) Stage() string {
	s := string(o)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}

// IsIngestStage reports whether o is a stage beneath the root ingest run.
func (o Operation) IsIngestStage() bool {
	return strings.HasPrefix(string(o), string(OperationIngest)+".")
}

// IngestStages lists the ingestion stages in execution order.
func IngestStages() []Operation {
	return []Operation{
		OperationReset,
		OperationLoadMovies,
		OperationLoadRatings,
		OperationLoadTags,
		OperationAggregateTags,
		OperationEmbedDocuments,
	}
}
