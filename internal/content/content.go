package content

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Sanitize removes unsafe HTML from chat text before it is relayed to a room.
func Sanitize(input string) string {
	return policy.Sanitize(input)
}
