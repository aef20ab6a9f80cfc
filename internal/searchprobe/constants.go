package searchprobe

// HTTP status code constants.
const (
	StatusOK = 200
)

// Event kinds on the wire.
const (
	KindStatus    = "status"
	KindCandidate = "candidate"
	KindDreamTeam = "dreamTeam"
	KindError     = "error"
)

// Stream reading constants.
const (
	maxEventBytes = 1 << 20
)
