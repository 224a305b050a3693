package models

// SkippedFile records a candidate file that was excluded from every aggregate.
type SkippedFile struct {
	Path   string     `json:"path"`
	Kind   RecordKind `json:"kind"`
	Reason string     `json:"reason"`
}
