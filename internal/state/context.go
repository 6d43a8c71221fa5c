package state

// Context is the caller-owned input of a single script run. The engine never
// mutates it in place: Snapshot derives the private working copies a run
// operates on, and the run returns those copies wholesale in its Result.
type Context struct {
	Request     Request
	Response    *Response
	Environment Map
	Variables   Map
}

// Snapshot returns deep copies of the mutable parts of the context. No
// references back to caller-owned structures are handed to a run.
func (c Context) Snapshot() (Request, Map, Map) {
	return c.Request.Clone(), c.Environment.Clone(), c.Variables.Clone()
}
