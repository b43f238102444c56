package api

import (
	"net/http"
	"strings"

	"github.com/djlord-it/cronpreview/internal/cron"
	"github.com/djlord-it/cronpreview/internal/preview"
)

// scheduleQuery holds the query parameters shared by the schedule endpoints.
type scheduleQuery struct {
	Expression string
	Timezone   string
	Count      int
	Options    []preview.Option
}

// parseScheduleQuery reads cron, timezone, count and after. A missing count
// means preview.DefaultCount; a present but malformed one is an error. A
// missing after leaves the reference instant to the service clock.
func parseScheduleQuery(r *http.Request) (scheduleQuery, error) {
	q := r.URL.Query()
	sq := scheduleQuery{
		Expression: q.Get("cron"),
		Timezone:   strings.TrimSpace(q.Get("timezone")),
		Count:      preview.DefaultCount,
	}

	if q.Has("count") {
		n, err := preview.ParseCount(q.Get("count"))
		if err != nil {
			return scheduleQuery{}, err
		}
		sq.Count = n
	}

	if q.Has("after") {
		after, err := cron.ParseInstant(q.Get("after"))
		if err != nil {
			return scheduleQuery{}, err
		}
		sq.Options = append(sq.Options, preview.At(after))
	}

	return sq, nil
}
