package types

// RecognizeRequest is one recognition event posted by a kiosk.  The kiosk
// runs face detection, embedding extraction, and the optional liveness
// model on-device; the server applies policy to their outputs.
type RecognizeRequest struct {
	KioskID    string    `json:"kiosk_id"`
	Embedding  []float32 `json:"embedding"`
	Liveness   string    `json:"liveness,omitempty"`    // "real" | "fake" | "unavailable"
	Proof      string    `json:"proof,omitempty"`       // base64 capture thumbnail
	CapturedAt string    `json:"captured_at,omitempty"` // optional device timestamp
}

type RecognizeResponse struct {
	Status     string        `json:"status"` // "success" | "failed" | "error"
	User       string        `json:"user,omitempty"`
	Message    string        `json:"message"`
	Audit      *AuditSummary `json:"audit,omitempty"`
	ServerTime string        `json:"server_time"`
}

type AuditSummary struct {
	IsLate        bool   `json:"is_late"`
	Cached        bool   `json:"cached,omitempty"`
	IntegrityHash string `json:"integrity_hash,omitempty"` // truncated, for display
}
