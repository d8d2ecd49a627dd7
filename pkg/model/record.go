package model

// RecordVersion is the schema tag written into new journey records.
const RecordVersion = "2.0"

// JourneyRecord is the serialized journey state kept in the persistent
// store. JSON keys match the historical record layout so old saves can
// still be read; MigrateRecord fills in fields older versions lack.
type JourneyRecord struct {
	ID                 string     `json:"id,omitempty"`
	Distance           float64    `json:"distance"`
	StartLocation      Location   `json:"startLocation"`
	Bearing            float64    `json:"bearing"`
	TravelMode         TravelMode `json:"travelMode"`
	CruiseModeIndex    int        `json:"currentCruiseModeIndex"`
	ThrottleIndex      int        `json:"currentThrottleIndex"`
	LastSaveTime       int64      `json:"lastSaveTime"`               // epoch ms
	JourneyStartTime   *int64     `json:"journeyStartTime,omitempty"` // epoch ms, nil until started
	VirtualTime        int64      `json:"virtualTime"`                // epoch ms
	TriggeredSequences []string   `json:"triggeredSequences"`
	Version            string     `json:"version"`
}

// MigrateRecord upgrades a record from an older schema in place. It is
// idempotent and safe to call on current records.
func MigrateRecord(r *JourneyRecord) {
	// Pre-2.0 saves carried no virtual time; fall back to the moment
	// the record was written.
	if r.VirtualTime == 0 {
		r.VirtualTime = r.LastSaveTime
	}
	if !r.TravelMode.Valid() {
		r.TravelMode = TravelCruiseControl
	}
	if r.TriggeredSequences == nil {
		r.TriggeredSequences = []string{}
	}
	r.Version = RecordVersion
}
