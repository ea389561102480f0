package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// AWSClients holds the service clients the API and worker share.
type AWSClients struct {
	DynamoDB   DynamoDBAPI
	SQS        SQSAPI
	CloudWatch CloudWatchAPI
}

// NewAWSClients loads AWS config once and builds every client from it.
func NewAWSClients(ctx context.Context) (*AWSClients, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &AWSClients{
		DynamoDB:   dynamodb.NewFromConfig(cfg),
		SQS:        sqs.NewFromConfig(cfg),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}, nil
}

// CloseScheduler returns a scheduler sending to queueURL on the shared SQS client.
func (c *AWSClients) CloseScheduler(queueURL string) *CloseScheduler {
	return NewCloseScheduler(c.SQS, queueURL)
}

// Metrics returns a CloudWatch publisher under namespace.
func (c *AWSClients) Metrics(namespace string) *MetricsPublisher {
	return NewMetricsPublisher(c.CloudWatch, namespace)
}
