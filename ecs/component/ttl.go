package component

// TTL destroys its entity once Remaining seconds have elapsed.
type TTL struct {
	Remaining float64
}

var TTLComponent = NewComponentKind[TTL]()
