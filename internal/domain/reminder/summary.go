package reminder

// RunSummary reports the outcome of one reminder batch.
type RunSummary struct {
	Created      int      // events created in this run
	Skipped      int      // dates that already had an event
	Remaining    int      // new dates left for a later run because of the per-run cap
	CreatedDates []string // dates created in this run, ascending
	RowsSkipped  int      // rows without a usable due-date
}
