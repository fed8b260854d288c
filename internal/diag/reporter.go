package diag

// Reporter is the minimal contract phases use to hand out diagnostics.
type Reporter interface {
	Report(code Code, sev Severity, line int, msg string)
}

// BagReporter: адаптер, который пишет в *Bag.
type BagReporter struct {
	Bag  *Bag
	File string
}

func (r BagReporter) Report(code Code, sev Severity, line int, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
		File:     r.File,
		Line:     line,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, int, string) {}
