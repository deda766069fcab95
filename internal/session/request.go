package session

import (
	"context"

	"github.com/muurk/vininsight/internal/vindecode"
)

// Request is an issued decode waiting to be performed.
type Request struct {
	// Epoch is the selection epoch at issue time.
	Epoch uint64
	VIN   string

	apiKey  string
	decoder Decoder
}

// Completion is the outcome of Request.Do.
type Completion struct {
	Epoch   uint64
	VIN     string
	Payload *vindecode.Payload
	Err     error
}

// Do performs the lookup. It is safe to call from any goroutine.
func (r *Request) Do(ctx context.Context) Completion {
	p, err := r.decoder.Decode(ctx, r.VIN, r.apiKey)
	return Completion{Epoch: r.Epoch, VIN: r.VIN, Payload: p, Err: err}
}
