package model

// CommandSuggestion is one keyword-triggered hint. Keywords are matched
// case-insensitively as whole words inside chat text.
type CommandSuggestion struct {
	Id          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Keyword     string `gorm:"type:varchar(50);unique;not null;index" json:"keyword"`
	Suggestion  string `gorm:"type:varchar(255);not null" json:"suggestion"`
	Description string `gorm:"type:text" json:"description"`
}
