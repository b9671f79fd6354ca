package scanner

import "encoding/json"

// Result is one accepted advertisement: the advertiser address and its
// manufacturer data as lowercase hex.
//
// Address is "" when the platform did not report one; it is encoded as JSON null.
type Result struct {
	Address string
	Payload string
}

type resultJSON struct {
	Address *string `json:"address"`
	Payload string  `json:"payload"`
}

// MarshalJSON encodes the result as {"address": ..., "payload": ...}
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Payload: r.Payload}
	if r.Address != "" {
		out.Address = &r.Address
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the form produced by MarshalJSON
func (r *Result) UnmarshalJSON(data []byte) error {
	var in resultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	r.Payload = in.Payload
	r.Address = ""
	if in.Address != nil {
		r.Address = *in.Address
	}
	return nil
}
