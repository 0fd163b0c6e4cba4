package mainconfig

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/wolfman30/careline-triage/internal/config"
)

func TestLoadAWSConfig_EndpointOverride(t *testing.T) {
	cfg := &appconfig.Config{
		AWSRegion:           "us-east-1",
		AWSAccessKeyID:      "test",
		AWSSecretAccessKey:  "test",
		AWSEndpointOverride: "http://localhost:4566",
	}

	awsCfg, err := LoadAWSConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", awsCfg.Region)

	ep, err := awsCfg.EndpointResolverWithOptions.ResolveEndpoint(sqs.ServiceID, "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566", ep.URL)

	ep, err = awsCfg.EndpointResolverWithOptions.ResolveEndpoint(sesv2.ServiceID, "us-east-1")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4566", ep.URL)

	_, err = awsCfg.EndpointResolverWithOptions.ResolveEndpoint("S3", "us-east-1")
	var notFound *aws.EndpointNotFoundError
	assert.ErrorAs(t, err, &notFound)

	creds, err := awsCfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestNewSQSClient(t *testing.T) {
	client, err := NewSQSClient(context.Background(), &appconfig.Config{AWSRegion: "us-west-2"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}
