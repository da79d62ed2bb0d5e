package models

import (
	"github.com/shopspring/decimal"
)

type Role string

const (
	RolePersonal Role = "personal"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

// Event описывает мероприятие пользователя в том виде, в каком его отдает маркетплейс.
// Date хранится строкой: маркетплейс не гарантирует формат, разбор выполняет фильтр.
type Event struct {
	ID       string              `json:"id"`
	OwnerID  string              `json:"owner_id,omitempty"`
	Title    string              `json:"title,omitempty"`
	Budget   decimal.NullDecimal `json:"budget"`
	Date     string              `json:"date,omitempty"`
	Location string              `json:"location,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
