package session

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/vininsight/internal/logging"
	"github.com/muurk/vininsight/internal/vehicle"
	"github.com/muurk/vininsight/internal/vindecode"
)

// Notice titles for the connectivity check.
const (
	TitleTestOK     = "API Test Successful"
	TitleTestFailed = "API Test Failed"
)

// TestRequest is a pending connectivity check against vindecode.SampleVIN.
type TestRequest struct {
	apiKey  string
	decoder Decoder
}

// TestResult is the outcome of a connectivity check.
type TestResult struct {
	Payload *vindecode.Payload
	Err     error
}

// Make returns the decoded make, or "Unknown".
func (r TestResult) Make() string {
	if v, ok := r.Payload.Label("make"); ok {
		return v
	}
	return vehicle.UnknownValue
}

// Model returns the decoded model, or "Unknown".
func (r TestResult) Model() string {
	if v, ok := r.Payload.Label("model"); ok {
		return v
	}
	return vehicle.UnknownValue
}

// Notice describes the result for the user.
func (r TestResult) Notice() Notice {
	switch {
	case r.Err == nil:
		return Notice{
			Title: TitleTestOK,
			Message: "API connection successful!\n\n" +
				"Sample VIN decoded successfully.\n" +
				"Vehicle: " + r.Make() + " " + r.Model(),
		}
	default:
		return Notice{Title: TitleTestFailed, Message: vindecode.TroubleshootingHint(r.Err)}
	}
}

// Do performs the check. It is safe to call from any goroutine.
func (t *TestRequest) Do(ctx context.Context) TestResult {
	p, err := t.decoder.Decode(ctx, vindecode.SampleVIN, t.apiKey)
	return TestResult{Payload: p, Err: err}
}

// BeginTest reads the saved credential and prepares a connectivity check.
// It never changes the decode status. A blank credential shows a notice and
// returns a precondition error.
func (s *Session) BeginTest() (*TestRequest, error) {
	key, err := s.store.Load()
	if err != nil || strings.TrimSpace(key) == "" {
		s.notifier.Notify(Notice{Title: TitleAPIKeyRequired, Message: MsgEnterAPIKey})
		return nil, vindecode.NewPreconditionError(MsgAPIKeyRequired, err)
	}
	return &TestRequest{apiKey: key, decoder: s.decoder}, nil
}

// CompleteTest shows the result notice.
func (s *Session) CompleteTest(r TestResult) {
	if r.Err != nil {
		logging.Warn("API test failed", zap.Error(r.Err))
	} else {
		logging.Info("API test succeeded",
			zap.String("make", r.Make()),
			zap.String("model", r.Model()),
		)
	}
	s.notifier.Notify(r.Notice())
}

// TestConnection runs a whole connectivity check synchronously.
func (s *Session) TestConnection(ctx context.Context) (TestResult, error) {
	req, err := s.BeginTest()
	if err != nil {
		return TestResult{Err: err}, err
	}
	res := req.Do(ctx)
	s.CompleteTest(res)
	return res, res.Err
}
