package contahub

import (
	"fmt"
	"time"
)

// Nonce formats the current wall-clock time as YYYYMMDDHHmmssSSS. The vendor
// treats the path segment as a single-use cache buster and some endpoints
// reject a repeated value, so it is recomputed on every call.
func Nonce() string {
	now := time.Now()
	return now.Format("20060102150405") + fmt.Sprintf("%03d", now.Nanosecond()/int(time.Millisecond))
}
