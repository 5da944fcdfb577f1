package workflow

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Worklist tiers, highest priority first.
const (
	TierUrgent       = 1 // latest vitals critical, regardless of status
	TierResultsReady = 2 // actionable new information for the clinician
	TierNewPatient   = 3 // waiting for a first consultation
	tierOther        = 4
)

// QueueEntry is one candidate row for a clinician's worklist.
type QueueEntry struct {
	VisitID              uuid.UUID
	PatientID            uuid.UUID
	DisplayStatus        VisitStatus
	Condition            Condition
	CreatedAt            time.Time
	HasDoctorInteraction bool
}

// Tier assigns the coarse priority rank for a queue entry.
func Tier(e QueueEntry) int {
	switch {
	case e.Condition == ConditionCritical:
		return TierUrgent
	case e.DisplayStatus == VisitAwaitingResults || e.DisplayStatus == VisitNurseCompleted:
		return TierResultsReady
	case e.DisplayStatus == VisitWaitingForDoctor && !e.HasDoctorInteraction:
		return TierNewPatient
	}
	return tierOther
}

// Rank sorts worklist entries by tier, then first-in-first-out within a
// tier, with the visit id as a final deterministic tie-break. It is a pure
// function of its input: the argument is not mutated and re-running it on
// an unchanged snapshot yields an identical order.
func Rank(entries []QueueEntry) []QueueEntry {
	out := make([]QueueEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := Tier(out[i]), Tier(out[j])
		if ti != tj {
			return ti < tj
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].VisitID.String() < out[j].VisitID.String()
	})
	return out
}
