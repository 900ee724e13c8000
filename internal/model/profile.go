package model

// EngineProfile identifies the methodology and ruleset that produced a record.
// The values are fixed at build time and read-only for the life of the process.
type EngineProfile struct {
	EngineVersion      string `json:"engine_version"`
	MethodologyVersion string `json:"methodology_version"`
	SchemaVersion      string `json:"schema_version"`
	RulesetID          string `json:"ruleset_id"`
	RulesetRevision    int    `json:"ruleset_revision"`
}

const (
	EngineVersion      = "1.5.1"
	MethodologyVersion = "1.5.1-m1"
	SchemaVersion      = "result-v1"
	RulesetID          = "canon-core"
	RulesetRevision    = 1
)

// Profile returns the engine profile compiled into this binary
func Profile() EngineProfile {
	return EngineProfile{
		EngineVersion:      EngineVersion,
		MethodologyVersion: MethodologyVersion,
		SchemaVersion:      SchemaVersion,
		RulesetID:          RulesetID,
		RulesetRevision:    RulesetRevision,
	}
}
