package model

// Tenant 租户（一所驾校/飞行学校），所有业务数据按租户隔离
// swagger:model Tenant
type Tenant struct {
	BaseModel
	Name string `gorm:"size:255;not null" json:"name"`
	Code string `gorm:"size:50;uniqueIndex;not null" json:"code"`
}

func (Tenant) TableName() string {
	return "tenants"
}
