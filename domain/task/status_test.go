package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Lifecycle(t *testing.T) {
	s := NewStatus(OperationEmbedDocuments, nil)
	assert.Equal(t, ReportingStateStarted, s.State())
	assert.Equal(t, "moviesearch.ingest.embed_documents", s.ID())

	s = s.SetTotal(200).SetCurrent(50, "embedding")
	assert.Equal(t, ReportingStateInProgress, s.State())
	assert.Equal(t, 25.0, s.CompletionPercent())
	assert.Equal(t, "embedding", s.Message())

	s = s.SetCurrent(60, "")
	assert.Equal(t, "embedding", s.Message())

	s = s.Complete()
	assert.Equal(t, ReportingStateCompleted, s.State())
	assert.Equal(t, 200, s.Current())
	assert.True(t, s.State().IsTerminal())
}

func TestStatus_CompleteWithoutTotalKeepsCount(t *testing.T) {
	s := NewStatus(OperationLoadRatings, nil).SetCurrent(100836, "").Complete()
	assert.Equal(t, 100836, s.Current())
	assert.Equal(t, 0.0, s.CompletionPercent())
}

func TestStatus_FailIsTerminal(t *testing.T) {
	parent := NewStatus(OperationIngest, nil)
	s := NewStatus(OperationLoadTags, &parent).Fail("boom")
	assert.Equal(t, ReportingStateFailed, s.State())
	assert.Equal(t, "boom", s.Error())
	assert.Equal(t, OperationIngest, s.Parent().Operation())

	s = s.Complete()
	assert.Equal(t, ReportingStateFailed, s.State())
}

func TestStatus_CompletionPercentClamps(t *testing.T) {
	s := NewStatus(OperationLoadMovies, nil).SetTotal(10).SetCurrent(15, "")
	assert.Equal(t, 100.0, s.CompletionPercent())
}

func TestOperation_Stage(t *testing.T) {
	assert.Equal(t, "load_movies", OperationLoadMovies.Stage())
	assert.True(t, OperationLoadMovies.IsIngestStage())
	assert.False(t, OperationIngest.IsIngestStage())
	assert.Len(t, IngestStages(), 6)
	for _, op := range IngestStages() {
		assert.True(t, op.IsIngestStage(), op)
	}
}
