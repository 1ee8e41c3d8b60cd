package bridge

import "encoding/json"

// encodeEvent serializes an Event for the dashboard wire. JSON, not the
// gob framing internal/proto uses between master and slave: the bridge's
// consumer is a browser-side dashboard, not another Go process, so a
// self-describing text format is the right fit here even though gob is
// right for the C1 channel.
func encodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}
