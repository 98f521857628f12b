package persistence

// MovieModel is a row of the movies table.
type MovieModel struct {
	MovieID int64  `gorm:"column:movie_id;primaryKey;autoIncrement:false"`
	Title   string `gorm:"column:title;size:255;not null"`
	Genres  string `gorm:"column:genres;size:255;not null"`
}

// TableName returns the table name.
func (MovieModel) TableName() string { return "movies" }

// RatingModel is a row of the ratings table.
type RatingModel struct {
	ID        int64   `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64   `gorm:"column:user_id;index"`
	MovieID   int64   `gorm:"column:movie_id;index"`
	Rating    float64 `gorm:"column:rating"`
	Timestamp int64   `gorm:"column:timestamp"`
}

// TableName returns the table name.
func (RatingModel) TableName() string { return "ratings" }

// TagModel is a row of the tags table.
type TagModel struct {
	ID        int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64  `gorm:"column:user_id"`
	MovieID   int64  `gorm:"column:movie_id;index"`
	Tag       string `gorm:"column:tag;type:text"`
	Timestamp int64  `gorm:"column:timestamp"`
}

// TableName returns the table name.
func (TagModel) TableName() string { return "tags" }
