package booking

import (
	"encoding/base32"

	"github.com/google/uuid"
)

const codePrefix = "BK-"

// NewCode returns a human friendly booking reference such as BK-7QK2M4ZP.
func NewCode() string {
	id := uuid.New()
	return codePrefix + base32.StdEncoding.EncodeToString(id[:5])
}
