package models

import "time"

// ScheduleProgression is the daily snapshot of aggregate completion and
// approval counts. A row is created lazily on the first flag flip of a
// day, backfilled from a full recount, then tracked by deltas.
type ScheduleProgression struct {
	ID                           int       `db:"id" json:"id"`
	Date                         time.Time `db:"date" json:"date"`
	NumSchedulesCompleted        int       `db:"num_schedules_completed" json:"num_schedules_completed"`
	NumApprovalsFromProgramHeads int       `db:"num_approvals_from_program_heads" json:"num_approvals_from_program_heads"`
}
