package models

import (
	"time"
)

// Client represents a buyer (primary plus optional secondary buyer identity)
type Client struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	FullName          string    `gorm:"not null;index" json:"full_name"`
	Identity          string    `gorm:"not null" json:"identity"`
	Email             *string   `gorm:"index" json:"email"`
	Phone             *string   `json:"phone"`
	Address           *string   `gorm:"type:text" json:"address"`
	SecondaryName     *string   `json:"secondary_name"`
	SecondaryIdentity *string   `json:"secondary_identity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Associations
	Cases []SaleCase `gorm:"foreignKey:ClientID" json:"cases,omitempty"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

// ClientResponse is the JSON response format for clients
type ClientResponse struct {
	ID                uint    `json:"id"`
	FullName          string  `json:"full_name"`
	Identity          string  `json:"identity"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	SecondaryName     *string `json:"secondary_name"`
	SecondaryIdentity *string `json:"secondary_identity"`
}

// ToResponse converts Client to ClientResponse, masking identity documents
func (c *Client) ToResponse() ClientResponse {
	resp := ClientResponse{
		ID:            c.ID,
		FullName:      c.FullName,
		Identity:      maskIdentity(c.Identity),
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		SecondaryName: c.SecondaryName,
	}
	if c.SecondaryIdentity != nil {
		masked := maskIdentity(*c.SecondaryIdentity)
		resp.SecondaryIdentity = &masked
	}
	return resp
}

// maskIdentity masks an identity string for privacy
func maskIdentity(identity string) string {
	if len(identity) <= 4 {
		masked := ""
		for range identity {
			masked += "*"
		}
		return masked
	}
	masked := identity[:4]
	for i := 4; i < len(identity)-3; i++ {
		masked += "*"
	}
	masked += identity[len(identity)-3:]
	return masked
}
