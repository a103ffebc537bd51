package dto

type LocationReportRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type LocationStateResponse struct {
	Enabled  bool     `json:"enabled"`
	Tracking bool     `json:"tracking"`
	Degraded bool     `json:"degraded"`
	Lat      *float64 `json:"lat,omitempty"`
	Lon      *float64 `json:"lon,omitempty"`
}

type LocationToggleResponse struct {
	OK    bool                  `json:"ok"`
	State LocationStateResponse `json:"state"`
}
