package aws_test

import (
	"context"
	"io"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/isometry/country-gateway/internal/controllers/aws"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	b, _ := io.ReadAll(params.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

type fakeSSM struct {
	values map[string]string
}

func (f *fakeSSM) GetParameter(_ context.Context, params *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	v, ok := f.values[awssdk.ToString(params.Name)]
	if !ok {
		return nil, errors.New("ParameterNotFound")
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: awssdk.String(v)}}, nil
}

func newController(t *testing.T, s3c *fakeS3, ssmc *fakeSSM) *aws.Controller {
	t.Helper()
	ctl, err := aws.NewController(context.Background(), aws.WithS3Client(s3c), aws.WithSSMClient(ssmc))
	require.NoError(t, err)
	return ctl
}

func TestGetSecret(t *testing.T) {
	ctl := newController(t, &fakeS3{}, &fakeSSM{values: map[string]string{"/country-gateway/signing-secret": "hush"}})

	secret, err := ctl.GetSecret(context.Background(), "/country-gateway/signing-secret", true)
	require.NoError(t, err)
	assert.Equal(t, "hush", secret)

	_, err = ctl.GetSecret(context.Background(), "/missing", true)
	assert.Error(t, err)
}

func TestPutS3Object(t *testing.T) {
	s3c := &fakeS3{}
	ctl := newController(t, s3c, &fakeSSM{})

	require.NoError(t, ctl.PutS3Object(context.Background(), "continent.EU", "audit", []byte(`{"continent":"EU"}`)))
	require.NotNil(t, s3c.input)
	assert.Equal(t, "audit", awssdk.ToString(s3c.input.Bucket))
	assert.True(t, strings.HasSuffix(awssdk.ToString(s3c.input.Key), ".continent.EU"))
	assert.Equal(t, "application/json", awssdk.ToString(s3c.input.ContentType))
	assert.Equal(t, `{"continent":"EU"}`, s3c.body)
}

func TestPutS3Object_NoBucket(t *testing.T) {
	s3c := &fakeS3{}
	ctl := newController(t, s3c, &fakeSSM{})

	require.NoError(t, ctl.PutS3Object(context.Background(), "continent.EU", "", []byte(`{}`)))
	assert.Nil(t, s3c.input)
}

func TestPutS3Object_Failure(t *testing.T) {
	ctl := newController(t, &fakeS3{err: errors.New("AccessDenied")}, &fakeSSM{})

	err := ctl.PutS3Object(context.Background(), "continent.EU", "audit", []byte(`{}`))
	assert.ErrorContains(t, err, "failed to put object to S3")
}
