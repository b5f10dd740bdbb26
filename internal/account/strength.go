package account

// Strength scores a password from 0 to 4
type Strength struct {
	Score int    `json:"score"`
	Label string `json:"label"`
}

var strengthLabels = [...]string{"Too weak", "Weak", "Fair", "Good", "Strong"}

// PasswordStrength awards one point each for length >= 8, an upper-case
// ASCII letter, a digit and any character outside [A-Za-z0-9].
func PasswordStrength(password string) Strength {
	var upper, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
		default:
			symbol = true
		}
	}

	score := 0
	if len([]rune(password)) >= 8 {
		score++
	}
	for _, ok := range []bool{upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return Strength{Score: score, Label: strengthLabels[score]}
}
