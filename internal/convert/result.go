package convert

// Result summarizes one entity kind's conversion run.
//
// Created and Updated count records written; Skipped counts register entries
// dropped under the lenient missing-reference policy, with one entry in
// Errors per skip. Planned holds the destination paths a dry run would have
// written, in register order.
type Result struct {
	Created int
	Updated int
	Skipped int
	Errors  []string
	Planned []string
}

func newResult() *Result {
	return &Result{Errors: []string{}, Planned: []string{}}
}

// Summary aggregates the per-kind results of a full conversion run, in the
// order the kinds were converted.
type Summary struct {
	Group   *Result
	Person  *Result
	Meeting *Result
}
