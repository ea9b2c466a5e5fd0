package models

// Country is a row of the hosted backend's countries table. Only name is relied upon.
type Country struct {
	ID   int64  `json:"id" gorm:"column:id"`
	Name string `json:"name" gorm:"column:name"`
}

func (Country) TableName() string { return "countries" }
