package directions

// response mirrors the OSRM-compatible directions payload.
type response struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Routes    []routeJSON    `json:"routes"`
	Waypoints []waypointJSON `json:"waypoints"`
}

type routeJSON struct {
	Geometry string    `json:"geometry"`
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Legs     []legJSON `json:"legs"`
}

type legJSON struct {
	Summary  string     `json:"summary"`
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
	Steps    []stepJSON `json:"steps"`
}

type stepJSON struct {
	Name               string       `json:"name"`
	Distance           float64      `json:"distance"`
	Duration           float64      `json:"duration"`
	Maneuver           maneuverJSON `json:"maneuver"`
	VoiceInstructions  []voiceJSON  `json:"voiceInstructions"`
	BannerInstructions []bannerJSON `json:"bannerInstructions"`
}

type maneuverJSON struct {
	Type        string `json:"type"`
	Modifier    string `json:"modifier"`
	Instruction string `json:"instruction"`
}

type voiceJSON struct {
	Announcement string `json:"announcement"`
}

type bannerJSON struct {
	Primary struct {
		Text string `json:"text"`
	} `json:"primary"`
}

type waypointJSON struct {
	Name     string    `json:"name"`
	Location []float64 `json:"location"`
}

// errorBody is the shape of a non-success response body.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
