package sound

import "github.com/milk9111/robotmasters/behavior"

// Recorder keeps every request, for traces and tests.
type Recorder struct {
	Requests []Request
}

var _ behavior.SoundRequester = (*Recorder)(nil)

func (r *Recorder) RequestSound(asset string, loop bool) {
	r.Requests = append(r.Requests, Request{Asset: asset, Loop: loop})
}

// Assets lists the requested asset names in order.
func (r *Recorder) Assets() []string {
	out := make([]string, len(r.Requests))
	for i, req := range r.Requests {
		out[i] = req.Asset
	}
	return out
}

// Multi fans every request out to several requesters.
type Multi []behavior.SoundRequester

func (m Multi) RequestSound(asset string, loop bool) {
	for _, r := range m {
		if r != nil {
			r.RequestSound(asset, loop)
		}
	}
}
