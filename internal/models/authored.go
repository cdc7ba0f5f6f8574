package models

import "time"

// Authored is the value shape shared by Review and Comment: who wrote it,
// the body, and when it was published. Embedded, not inherited.
type Authored struct {
	AuthorID string    `json:"-" gorm:"type:uuid;not null;index"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime"`

	Author User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
