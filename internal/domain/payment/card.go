package payment

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	ErrInvalidCardNumber = errors.New("payment: invalid card number")
	ErrInvalidCardHolder = errors.New("payment: card holder name required")
	ErrInvalidExpiry     = errors.New("payment: invalid card expiry")
	ErrCardExpired       = errors.New("payment: card has expired")
	ErrInvalidCVV        = errors.New("payment: invalid cvv")
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{13,19}$`)
	cardSeparators    = regexp.MustCompile(`[\s-]`)
	digitsOnly        = regexp.MustCompile(`^\d+$`)
)

// CreditCard keeps only a masked summary of the card; the full number never
// survives construction.
type CreditCard struct {
	MaskedNumber string
	HolderName   string
	ExpiryMonth  int
	ExpiryYear   int
	Last4        string
	Brand        string
}

// NewCreditCard validates raw card details and returns the masked summary.
func NewCreditCard(number, holderName string, expiryMonth, expiryYear int, cvv string, now time.Time) (CreditCard, error) {
	number = cardSeparators.ReplaceAllString(number, "")
	if !cardNumberPattern.MatchString(number) || !luhnValid(number) {
		return CreditCard{}, ErrInvalidCardNumber
	}
	holderName = strings.TrimSpace(holderName)
	if holderName == "" || len(holderName) > 100 {
		return CreditCard{}, ErrInvalidCardHolder
	}
	if expiryMonth < 1 || expiryMonth > 12 {
		return CreditCard{}, ErrInvalidExpiry
	}
	if expiryYear > now.UTC().Year()+20 {
		return CreditCard{}, ErrInvalidExpiry
	}
	if expiryYear < now.UTC().Year() ||
		(expiryYear == now.UTC().Year() && expiryMonth < int(now.UTC().Month())) {
		return CreditCard{}, ErrCardExpired
	}
	if !validCVV(cvv, number) {
		return CreditCard{}, ErrInvalidCVV
	}
	return CreditCard{
		MaskedNumber: maskNumber(number),
		HolderName:   holderName,
		ExpiryMonth:  expiryMonth,
		ExpiryYear:   expiryYear,
		Last4:        number[len(number)-4:],
		Brand:        detectBrand(number),
	}, nil
}

func (c CreditCard) String() string {
	return c.Brand + " ending in " + c.Last4
}

func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return sum%10 == 0
}

func validCVV(cvv, number string) bool {
	expected := 3
	// American Express uses 4-digit codes.
	if strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37") {
		expected = 4
	}
	return len(cvv) == expected && digitsOnly.MatchString(cvv)
}

func detectBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "Visa"
	case len(number) >= 2 && number[0] == '5' && number[1] >= '1' && number[1] <= '5':
		return "MasterCard"
	case strings.HasPrefix(number, "34") || strings.HasPrefix(number, "37"):
		return "American Express"
	case strings.HasPrefix(number, "6011") || strings.HasPrefix(number, "65"):
		return "Discover"
	default:
		return "Unknown"
	}
}

func maskNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
