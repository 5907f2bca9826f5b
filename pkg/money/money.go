package money

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a non-negative count of currency units (Vietnamese đồng has no
// subunit). It is stored and computed as an integer; the grouped-digit string
// form ("55,000") exists only at the JSON boundary.
type Amount int64

// Parse converts a grouped-digit price string into an Amount. Exactly the
// characters '.' and ',' are stripped before parsing; anything else that is
// not a digit is an error.
func Parse(s string) (Amount, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))

	if cleaned == "" {
		return 0, fmt.Errorf("empty price string")
	}

	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return Amount(n), nil
}

// String renders the amount with ',' thousands separators, e.g. 55000 -> "55,000".
func (a Amount) String() string {
	digits := strconv.FormatInt(int64(a), 10)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// MarshalJSON serializes the amount as a grouped-digit string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts either a grouped-digit string ("55,000") or a bare
// JSON number, so payloads from older clients keep working.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer so GORM stores the raw integer.
func (a Amount) Value() (driver.Value, error) {
	return int64(a), nil
}

// Scan implements sql.Scanner.
func (a *Amount) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*a = Amount(v)
	case float64:
		*a = Amount(int64(v))
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*a = parsed
	case nil:
		*a = 0
	default:
		return fmt.Errorf("cannot scan %T into money.Amount", src)
	}
	return nil
}
