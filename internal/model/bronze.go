package model

// BronzeCall is one row of a call-tracking export, normalized. It is never
// modified after the parser creates it.
type BronzeCall struct {
	ID              string `json:"id"`
	RawAgentName    string `json:"rawAgentName"`
	RawAgentNumber  string `json:"rawAgentNumber"`
	CallStatus      string `json:"callStatus"`
	StartTime       string `json:"startTime"`
	DurationSeconds int    `json:"durationSeconds"`
	TrackingNumber  string `json:"trackingNumber"`
	Source          string `json:"source"`
	Transcript      string `json:"transcript"`
	RecordingURL    string `json:"recordingUrl,omitempty"`
	Sentiment       string `json:"sentiment,omitempty"`
	NumberName      string `json:"numberName,omitempty"`
	Medium          string `json:"medium,omitempty"`
	Campaign        string `json:"campaign,omitempty"`
	Note            string `json:"note,omitempty"`
	Attribution     string `json:"attribution,omitempty"`
}
