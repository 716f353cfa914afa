package account

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"github.com/wallet-ledger/internal/domain/shared"
)

// Account is the customer that owns exactly one wallet.
type Account struct {
	ID                uuid.UUID  `json:"id"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Email             string     `json:"email"`
	DateOfBirth       *time.Time `json:"date_of_birth,omitempty"`
	PreferredCurrency string     `json:"preferred_currency"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Changes is a partial update; nil fields are left as they are.
type Changes struct {
	FirstName         *string
	LastName          *string
	Email             *string
	DateOfBirth       *time.Time
	PreferredCurrency *string
}

// NewAccount builds a validated account. An empty currency falls back to defaultCurrency.
func NewAccount(firstName, lastName, email string, dob *time.Time, currency, defaultCurrency string) (*Account, error) {
	if currency == "" {
		currency = defaultCurrency
	}
	now := time.Now().UTC()
	acc := &Account{
		ID:                uuid.New(),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		DateOfBirth:       dob,
		PreferredCurrency: shared.NormalizeCurrency(currency),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := acc.Validate(); err != nil {
		return nil, err
	}
	return acc, nil
}

func (a *Account) Validate() error {
	err := validation.ValidateStruct(a,
		validation.Field(&a.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.Email, validation.Required, validation.Length(3, 254), is.EmailFormat),
		validation.Field(&a.DateOfBirth, validation.By(inThePast)),
		validation.Field(&a.PreferredCurrency, validation.Required, validation.By(currencyRule)),
	)
	if err != nil {
		if fields, ok := err.(validation.Errors); ok {
			return ErrInvalidAccount{Fields: fields}
		}
		return err
	}
	return nil
}

// Apply merges changes into the account, validates the result and reports
// whether the preferred currency changed.
func (a *Account) Apply(c Changes) (currencyChanged bool, err error) {
	next := *a
	if c.FirstName != nil {
		next.FirstName = strings.TrimSpace(*c.FirstName)
	}
	if c.LastName != nil {
		next.LastName = strings.TrimSpace(*c.LastName)
	}
	if c.Email != nil {
		next.Email = strings.ToLower(strings.TrimSpace(*c.Email))
	}
	if c.DateOfBirth != nil {
		next.DateOfBirth = c.DateOfBirth
	}
	if c.PreferredCurrency != nil {
		next.PreferredCurrency = shared.NormalizeCurrency(*c.PreferredCurrency)
	}
	if err := next.Validate(); err != nil {
		return false, err
	}

	currencyChanged = next.PreferredCurrency != a.PreferredCurrency
	next.UpdatedAt = time.Now().UTC()
	*a = next
	return currencyChanged, nil
}

func (a *Account) FullName() string {
	return a.FirstName + " " + a.LastName
}

func inThePast(value interface{}) error {
	dob, _ := value.(*time.Time)
	if dob == nil {
		return nil
	}
	if !dob.Before(time.Now()) {
		return validation.NewError("validation_dob_future", "must be in the past")
	}
	return nil
}

func currencyRule(value interface{}) error {
	code, _ := value.(string)
	if shared.ValidateCurrency(code) != nil {
		return validation.NewError("validation_currency", "must be a 3-letter upper-case code")
	}
	return nil
}
