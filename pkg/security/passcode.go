package security

import (
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"storeit/backend/model"
)

const passcodeDigits = 6

type PasscodeOpts struct {
	AccountID string
	Email     string
	ExpiresAt *time.Time
}

// MakePasscode generates a fresh numeric one-time code and returns both
// the plaintext (for the outgoing mail, never stored) and the hashed
// database row
func MakePasscode(h *ArgonHash, o *PasscodeOpts) (code string, p *model.Passcode, err error) {
	if o == nil {
		return "", nil, errors.New("no passcode options provided")
	}

	if o.AccountID == "" {
		return "", nil, errors.New("no account ID provided")
	}

	if o.Email == "" {
		return "", nil, errors.New("no email provided")
	}

	if o.ExpiresAt == nil {
		return "", nil, errors.New("no expiry provided")
	}

	code, err = genDigits(passcodeDigits)
	if err != nil {
		return "", nil, err
	}

	hash, err := h.Generate(code)
	if err != nil {
		return "", nil, err
	}

	return code, &model.Passcode{
		AccountID: o.AccountID,
		Email:     o.Email,
		CodeHash:  hash,
		Used:      false,
		ExpiresAt: *o.ExpiresAt,
		CreatedAt: time.Now(),
	}, nil
}

func genDigits(n int) (string, error) {
	b := make([]byte, n)
	for i := range b {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}

		b[i] = byte('0' + d.Int64())
	}

	return string(b), nil
}
