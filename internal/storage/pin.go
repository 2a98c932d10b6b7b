package storage

import (
	"math/rand"
	"strconv"
)

// generatePin returns a uniformly random 6-digit PIN in [100000, 999999].
// A PIN is only meaningful for the locker it is attached to, so global
// uniqueness is not required.
func generatePin() string {
	return strconv.Itoa(100000 + rand.Intn(900000))
}
