package models

type Review struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"not null;index"`
	Score   int   `json:"score" gorm:"not null;check:score >= 1 AND score <= 10"`
	Authored

	Title Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE"`
}

// One review per (title, author); the index lives in database.Migrate
// because it spans an embedded column.
func (Review) TableName() string {
	return "reviews"
}
