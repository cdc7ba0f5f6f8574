package models

// explicit join model so the table carries its own indexes
type TitleGenre struct {
	TitleID int64 `json:"title_id" gorm:"primaryKey;index;not null"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey;index;not null"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
