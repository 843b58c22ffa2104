package model

type Supplier struct {
	BaseModel
	Name          string `gorm:"type:varchar(255);not null" json:"name"`
	ContactPerson string `gorm:"type:varchar(255);not null" json:"contact_person"`
	Email         string `gorm:"type:varchar(255);not null" json:"email"`
	Phone         string `gorm:"type:varchar(30);not null" json:"phone"`

	Products []Product `json:"products,omitempty"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
