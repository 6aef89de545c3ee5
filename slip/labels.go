package slip

// Labels is the display vocabulary for one document kind. It is the only
// place status values are turned into words.
type Labels struct {
	status map[Status]string
	detail map[DetailStatus]string
	ret    map[ReturnStatus]string
}

var aggregateLabels = map[Status]string{
	Active:    "Active",
	Closed:    "Closed",
	Cancelled: "Cancelled",
	Partial:   "Partially returned",
}

var returnLabels = map[ReturnStatus]string{
	Returned:       "Returned",
	ReturnCanceled: "Cancelled",
}

var registry = map[Kind]Labels{
	LoanSlip: {
		status: aggregateLabels,
		detail: map[DetailStatus]string{
			Outgoing:       "Borrowed",
			ResolvedOK:     "Returned",
			ResolvedBroken: "Broken",
		},
	},
	MaintenanceSlip: {
		status: aggregateLabels,
		detail: map[DetailStatus]string{
			Outgoing:       "Sent",
			ResolvedOK:     "Returned",
			ResolvedBroken: "Broken",
		},
	},
	ReturnSlip: {
		ret: returnLabels,
		detail: map[DetailStatus]string{
			ResolvedOK:     "Returned",
			ResolvedBroken: "Broken",
		},
	},
	MaintenanceReturnSlip: {
		ret: returnLabels,
		detail: map[DetailStatus]string{
			ResolvedOK:     "Fixed",
			ResolvedBroken: "Unrepairable",
		},
	},
}

// LabelsFor returns the vocabulary of k.
func LabelsFor(k Kind) Labels { return registry[k] }

func (l Labels) Status(s Status) string             { return lookup(l.status, s) }
func (l Labels) Detail(d DetailStatus) string       { return lookup(l.detail, d) }
func (l Labels) ReturnStatus(s ReturnStatus) string { return lookup(l.ret, s) }

func lookup[K comparable](m map[K]string, k K) string {
	if v, ok := m[k]; ok {
		return v
	}
	return "Unknown"
}
