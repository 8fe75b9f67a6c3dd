package query

import (
	"fmt"
	"strconv"

	"github.com/kerfoot/uframe-m2m/pkg/uframe"
)

// sensorPort is the UFrame service the synthesized endpoints run against.
const sensorPort = 12576

// queryEndpoint renders the download endpoint for one (instrument, stream)
// pair. The parameter order and the unescaped ISO-8601 bounds are part of
// the format the download service accepts, so the string is assembled
// verbatim rather than through url.Values.
func queryEndpoint(rd uframe.RefDes, s uframe.Stream, w uframe.TimeWindow, p Params) string {
	endpoint := fmt.Sprintf("sensor/inv/%s/%s/%s/%s/%s?beginDT=%s&endDT=%s&format=application/%s&limit=%d&execDPA=%s&include_provenance=%s&user=%s",
		rd.Subsite,
		rd.Node,
		rd.Sensor,
		s.Method,
		s.Name,
		uframe.FormatQueryTime(w.Start),
		uframe.FormatQueryTime(w.End),
		p.Format,
		p.Limit,
		strconv.FormatBool(p.ExecDPA),
		strconv.FormatBool(p.IncludeProvenance),
		p.User)
	if p.Email != "" {
		endpoint += "&email=" + p.Email
	}
	return endpoint
}
