package httpserver

// checkRequest is the wire form of a gate check or usage report.
type checkRequest struct {
	Action     string `json:"action"`
	AssetID    string `json:"assetId"`
	AssetType  string `json:"assetType"`
	VisitorKey string `json:"visitorKey"`
}

// checkResponse mirrors the gate's decision.
type checkResponse struct {
	Success         bool   `json:"success"`
	Reason          string `json:"reason"`
	Message         string `json:"message,omitempty"`
	RequiresLogin   bool   `json:"requiresLogin,omitempty"`
	RequiresUpgrade bool   `json:"requiresUpgrade,omitempty"`
	Remaining       *int64 `json:"remaining,omitempty"`
}

type usageResponse struct {
	Recorded bool `json:"recorded"`
}

type setTierRequest struct {
	UserID string `json:"userId"`
	Tier   string `json:"tier"`
}

type errorResponse struct {
	Error string `json:"error"`
}
