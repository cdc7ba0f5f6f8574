package models

type Comment struct {
	ID       int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	ReviewID int64 `json:"review_id" gorm:"not null;index"`
	Authored

	Review Review `json:"-" gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE"`
}

func (Comment) TableName() string {
	return "comments"
}
