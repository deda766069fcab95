// Package session drives the VIN decode workflow for the selected vehicle.
//
// A Session follows the current vehicle.Selection and owns a small state
// machine:
//
//	not_decoded --decode--> decoding --succeed--> decoded
//	                           |
//	                           +------fail------> error
//
// decode is accepted from not_decoded, decoded and error. Every selection,
// including re-selecting the same vehicle, resets the session to not_decoded
// and drops the previous result.
//
// # Decoding
//
// A decode is split in three steps so the network call can leave the UI
// event loop:
//
//	req, err := s.BeginDecode() // on the loop: validates and moves to decoding
//	c := req.Do(ctx)            // anywhere: performs the HTTP call
//	s.Complete(c)               // on the loop: applies the result
//
// Each Request carries the selection epoch it was issued under. Complete
// discards results whose epoch no longer matches, so a slow response for a
// previous vehicle never overwrites the current one.
//
// # Thread Safety
//
// A Session is not safe for concurrent use. BeginDecode, Complete and
// selection changes must all run on the same goroutine. Request.Do touches
// no session state.
package session
