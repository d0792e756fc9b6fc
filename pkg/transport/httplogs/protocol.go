// Package httplogs implements the logs endpoint protocol: URL construction
// and client on the dashboard side, routing and parameter parsing on the
// daemon side.
package httplogs

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modoterra/logpanel/pkg/core"
)

// Query parameter names.
const (
	ParamFromDate   = "from_date"
	ParamToDate     = "to_date"
	ParamLastUpdate = "last_update"
)

// PathPrefix is where the daemon mounts the logs endpoint.
const PathPrefix = "/logs"

// InstancesResponse is the body of a request to the endpoint root.
type InstancesResponse struct {
	Instances []string `json:"instances"`
}

// ErrorResponse is the body of a non-200 response from the daemon.
type ErrorResponse struct {
	Error string `json:"error"`
}

// QueryURL builds <endpoint>/<instance>?<params> for q. In range mode
// to_date is only sent when the range is closed.
func QueryURL(endpoint, instance string, q core.Query) string {
	v := url.Values{}
	switch q.Mode {
	case core.ModeIncremental:
		v.Set(ParamLastUpdate, strconv.FormatInt(q.LastUpdate, 10))
	default:
		v.Set(ParamFromDate, strconv.FormatInt(q.FromDate, 10))
		if q.ToDate > 0 {
			v.Set(ParamToDate, strconv.FormatInt(q.ToDate, 10))
		}
	}
	return strings.TrimRight(endpoint, "/") + "/" + url.PathEscape(instance) + "?" + v.Encode()
}

// ParseQuery decodes request parameters. last_update selects incremental
// mode; otherwise from_date (default 0) and optional to_date form a range.
func ParseQuery(v url.Values) (core.Query, error) {
	if raw := v.Get(ParamLastUpdate); raw != "" {
		cursor, err := parseUnix(ParamLastUpdate, raw)
		if err != nil {
			return core.Query{}, err
		}
		return core.IncrementalQuery(cursor), nil
	}

	from, err := parseUnix(ParamFromDate, v.Get(ParamFromDate))
	if err != nil {
		return core.Query{}, err
	}
	to, err := parseUnix(ParamToDate, v.Get(ParamToDate))
	if err != nil {
		return core.Query{}, err
	}
	if to > 0 && to < from {
		return core.Query{}, fmt.Errorf("%s %d is before %s %d", ParamToDate, to, ParamFromDate, from)
	}
	return core.RangeQuery(from, to), nil
}

func parseUnix(name, raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	// Browsers and scripts sometimes send fractional seconds.
	if i := strings.IndexByte(raw, '.'); i >= 0 {
		raw = raw[:i]
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
