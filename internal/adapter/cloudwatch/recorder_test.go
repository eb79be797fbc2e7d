package cloudwatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/polkiloo/sweetsbybella/internal/config"
	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type metricsStub struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *metricsStub) PutMetricData(_ context.Context, in *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, m.err
}

func TestRecordSweep(t *testing.T) {
	stub := &metricsStub{}
	ranAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	NewRecorder(stub, "SweetsByBella", testLogger()).RecordSweep(context.Background(), model.SweepResult{
		CancelledCount: 3,
		NotifiedCount:  2,
		RanAt:          ranAt,
	})

	if len(stub.inputs) != 1 {
		t.Fatalf("expected one PutMetricData call, got %d", len(stub.inputs))
	}
	in := stub.inputs[0]
	if aws.ToString(in.Namespace) != "SweetsByBella" {
		t.Fatalf("unexpected namespace %q", aws.ToString(in.Namespace))
	}

	got := map[string]float64{}
	for _, d := range in.MetricData {
		if d.Unit != types.StandardUnitCount || !aws.ToTime(d.Timestamp).Equal(ranAt) {
			t.Fatalf("unexpected datum: %+v", d)
		}
		got[aws.ToString(d.MetricName)] = aws.ToFloat64(d.Value)
	}
	want := map[string]float64{"SweepRuns": 1, "OrdersExpired": 3, "ExpiryNotificationsSent": 2}
	for name, v := range want {
		if got[name] != v {
			t.Errorf("metric %s = %v, want %v", name, got[name], v)
		}
	}
}

func TestRecordSweepSwallowsErrors(t *testing.T) {
	stub := &metricsStub{err: errors.New("throttled")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewRecorder(stub, "ns", testLogger()).RecordSweep(ctx, model.SweepResult{})
	if len(stub.inputs) != 1 {
		t.Fatalf("expected the put to run even with a cancelled parent context")
	}
}

func TestNewSweepRecorderDisabled(t *testing.T) {
	rec, err := newSweepRecorder(recorderParams{Ctx: context.Background(), Config: &config.Config{}, Logger: testLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := rec.(NopRecorder); !ok {
		t.Fatalf("expected nop recorder, got %T", rec)
	}
	rec.RecordSweep(context.Background(), model.SweepResult{})
}
