package model

// User is a back-office operator. The API key identifies the session on
// inbound requests; release stamps the acting user on the purchase.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	APIKey string `json:"-"`
}

func (User) TableName() string { return "users" }
