package cloudwatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/polkiloo/sweetsbybella/internal/domain/model"
)

const putTimeout = 5 * time.Second

// MetricsAPI is the CloudWatch client surface used by Recorder.
type MetricsAPI interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Recorder publishes sweep counters as CloudWatch metrics.
type Recorder struct {
	client    MetricsAPI
	namespace string
	logger    *slog.Logger
}

// NewClient loads the default AWS credential chain for region.
func NewClient(ctx context.Context, region string) (*cloudwatch.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return cloudwatch.NewFromConfig(cfg), nil
}

func NewRecorder(client MetricsAPI, namespace string, logger *slog.Logger) *Recorder {
	return &Recorder{client: client, namespace: namespace, logger: logger}
}

// RecordSweep emits one datapoint per counter. Failures are logged only.
func (r *Recorder) RecordSweep(ctx context.Context, result model.SweepResult) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), putTimeout)
	defer cancel()

	at := result.RanAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []types.MetricDatum{
			datum("SweepRuns", 1, at),
			datum("OrdersExpired", float64(result.CancelledCount), at),
			datum("ExpiryNotificationsSent", float64(result.NotifiedCount), at),
		},
	})
	if err != nil {
		r.logger.Warn("put sweep metrics failed",
			slog.String("namespace", r.namespace),
			slog.String("error", err.Error()),
		)
	}
}

func datum(name string, value float64, at time.Time) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(at),
	}
}

// NopRecorder is used when no metrics namespace is configured.
type NopRecorder struct{}

func (NopRecorder) RecordSweep(context.Context, model.SweepResult) {}
