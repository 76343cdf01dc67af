package models

import "strings"

// Person is one half of the couple.
type Person struct {
	Name      string `mapstructure:"name" json:"name"`
	Parents   string `mapstructure:"parents" json:"parents"`
	BirthDate string `mapstructure:"birthDate" json:"birth_date"`
	Image     string `mapstructure:"image" json:"image"`
}

// FirstName returns the first word of the full name.
func (p Person) FirstName() string {
	first, _, _ := strings.Cut(strings.TrimSpace(p.Name), " ")
	return first
}

// Couple holds both partners.
type Couple struct {
	Bride Person `mapstructure:"bride" json:"bride"`
	Groom Person `mapstructure:"groom" json:"groom"`
}

// Event is a ceremony or reception card.
type Event struct {
	Title  string `mapstructure:"title" json:"title"`
	Date   string `mapstructure:"date" json:"date"`
	Time   string `mapstructure:"time" json:"time"`
	Venue  string `mapstructure:"venue" json:"venue"`
	MapURL string `mapstructure:"mapUrl" json:"map_url"`
}

// Milestone is one entry of the love story timeline.
type Milestone struct {
	Date        string `mapstructure:"date" json:"date"`
	Title       string `mapstructure:"title" json:"title"`
	Description string `mapstructure:"description" json:"description"`
}

// Gifts describes where guests can send gifts.
type Gifts struct {
	BankName      string   `mapstructure:"bankName" json:"bank_name"`
	AccountNumber string   `mapstructure:"accountNumber" json:"account_number"`
	AccountHolder string   `mapstructure:"accountHolder" json:"account_holder"`
	Phone         string   `mapstructure:"phone" json:"phone"`
	Address       []string `mapstructure:"address" json:"address"`
}

// AddressText is the clipboard form of the shipping address.
func (g Gifts) AddressText() string {
	return strings.Join(g.Address, "\n")
}

// Content is the static copy rendered on the page.
type Content struct {
	Couple    Couple      `mapstructure:"couple"`
	HeroImage string      `mapstructure:"heroImage"`
	Events    []Event     `mapstructure:"events"`
	Story     []Milestone `mapstructure:"story"`
	Gallery   []string    `mapstructure:"gallery"`
	Gifts     Gifts       `mapstructure:"gifts"`
}
