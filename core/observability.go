package core

// Stats represents runtime observability state for a pipeline.
//
// Each field is read atomically on its own; the struct as a whole is not a
// consistent cut, so Submitted may momentarily exceed Active+Completed.
type Stats struct {
	Name      string
	Submitted int64
	Active    int64
	Completed int64
	Panicked  int64
}
