package types

// AttendanceEntry is one ledger row prepared for display: the proof payload
// is decrypted (or replaced by the corruption sentinel when unreadable).
type AttendanceEntry struct {
	ID          int64   `json:"id"`
	IdentityID  int64   `json:"identity_id"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
	Timestamp   string  `json:"timestamp"`
	Proof       string  `json:"proof"`
	Status      string  `json:"status"`
	PrevHash    string  `json:"prev_hash"`
	CurrentHash string  `json:"current_hash"`
}

type VerifyResponse struct {
	Intact     bool   `json:"intact"`
	Records    int    `json:"records"`
	ServerTime string `json:"server_time"`
}

// DeleteResponse reports an administrative record deletion.  ChainBroken is
// true when records after the deleted one exist: verification will fail from
// that point forward.
type DeleteResponse struct {
	OK          bool   `json:"ok"`
	ChainBroken bool   `json:"chain_broken"`
	Message     string `json:"message"`
}

type EnrollRequest struct {
	Name       string      `json:"name"`
	Embeddings [][]float32 `json:"embeddings"`
}

type EnrollResponse struct {
	OK         bool   `json:"ok"`
	IdentityID int64  `json:"identity_id"`
	Indexed    int    `json:"indexed"`
	Message    string `json:"message,omitempty"`
}
