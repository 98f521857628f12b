// Package search provides the database-backed vector stores that rank movies
// by dot product.
package search

import (
	"errors"
	"fmt"

	"github.com/helixml/moviesearch/domain/search"
	"github.com/helixml/moviesearch/internal/database"
)

// TableName is the table holding one embedded document per movie.
const TableName = "movie_with_tags_with_vectors"

// ErrStoreNotInitialized indicates the vector table has not been created yet.
var ErrStoreNotInitialized = errors.New("vector store not initialized")

// identityMapper is an EntityMapper where D = E. Vector rows carry a blob
// whose decoding can fail, so conversion to search.Entry happens outside the
// repository.
type identityMapper[E any] struct{}

func (identityMapper[E]) ToDomain(entity E) E { return entity }
func (identityMapper[E]) ToModel(domain E) E  { return domain }

// BlobVectorEntity is a row of the vector table on backends that store the
// embedding as packed float32 bytes.
type BlobVectorEntity struct {
	MovieID int64  `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	Title   string `gorm:"column:title"`
	Genres  string `gorm:"column:genres"`
	AllTags string `gorm:"column:all_tags"`
	Vector  []byte `gorm:"column:vector"`
}

func newBlobVectorEntity(e search.Entry) (BlobVectorEntity, error) {
	blob, err := database.PackFloat32(e.Vector().Floats())
	if err != nil {
		return BlobVectorEntity{}, fmt.Errorf("movie %d: %w", e.MovieID(), err)
	}
	return BlobVectorEntity{
		MovieID: e.MovieID(),
		Title:   e.Title(),
		Genres:  e.Genres(),
		AllTags: e.AllTags(),
		Vector:  blob,
	}, nil
}

func (b BlobVectorEntity) entry() (search.Entry, error) {
	values, err := database.UnpackFloat32(b.Vector)
	if err != nil {
		return search.Entry{}, fmt.Errorf("movie %d: %w", b.MovieID, err)
	}
	return search.NewEntry(b.MovieID, b.Title, b.Genres, b.AllTags, search.NewVector(values)), nil
}

// scoredRow is the projection every similarity query selects.
type scoredRow struct {
	MovieID int64   `gorm:"column:movie_id"`
	Title   string  `gorm:"column:title"`
	Genres  string  `gorm:"column:genres"`
	Score   float64 `gorm:"column:score"`
}

func toResults(rows []scoredRow) []search.Result {
	results := make([]search.Result, len(rows))
	for i, r := range rows {
		results[i] = search.NewResult(r.MovieID, r.Title, r.Genres, r.Score)
	}
	return results
}
