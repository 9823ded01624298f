package service

import (
	"math/rand/v2"
	"strconv"
	"time"
)

// NewID returns a local record id: the base-36 millisecond timestamp followed
// by a random base-36 suffix.
func NewID() string {
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + strconv.FormatUint(rand.Uint64(), 36)
}
