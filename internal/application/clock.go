package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock lets tests pin the creation time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default, backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// NewRecordID builds an id from the creation time plus a random suffix,
// e.g. analysis_1735689600000_3f9c2a1be. No global sequencing is needed.
func NewRecordID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("analysis_%d_%s", now.UnixMilli(), suffix)
}
