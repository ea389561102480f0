package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsPublisher puts business counters into one CloudWatch namespace.
type MetricsPublisher struct {
	CloudWatch CloudWatchAPI
	Namespace  string
}

func NewMetricsPublisher(cw CloudWatchAPI, namespace string) *MetricsPublisher {
	return &MetricsPublisher{CloudWatch: cw, Namespace: namespace}
}

// Count records n occurrences of name.
func (m *MetricsPublisher) Count(ctx context.Context, name string, n float64) error {
	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: sdkaws.String(name),
			Value:      sdkaws.Float64(n),
			Unit:       cwtypes.StandardUnitCount,
			Timestamp:  sdkaws.Time(time.Now()),
		}},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}
