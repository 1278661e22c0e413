package archive

import (
	"context"
	"io"
	"testing"
	"time"

	"gw2_isac/analysis"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = params
	b, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func testReport() *analysis.Report {
	return &analysis.Report{
		ID:      "0b8f5c1e",
		Channel: "chan",
		Name:    "Run Analysis",
		Created: time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC),
		Run:     &analysis.RunAnalysis{GroupDps: 123456},
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "runs/2024/03/0b8f5c1e.json", Key(testReport()))
}

func TestPut(t *testing.T) {
	f := &fakeS3{}
	a := NewWithClient(f, "isac-runs")
	require.True(t, a.Enabled())

	require.NoError(t, a.Put(context.Background(), testReport()))
	require.NotNil(t, f.input)
	assert.Equal(t, "isac-runs", aws.ToString(f.input.Bucket))
	assert.Equal(t, "runs/2024/03/0b8f5c1e.json", aws.ToString(f.input.Key))
	assert.Equal(t, "application/json", aws.ToString(f.input.ContentType))

	var got analysis.Report
	require.NoError(t, jsoniter.Unmarshal(f.body, &got))
	assert.Equal(t, 123456, got.Run.GroupDps)
}

func TestPutError(t *testing.T) {
	a := NewWithClient(&fakeS3{err: errors.New("access denied")}, "isac-runs")

	err := a.Put(context.Background(), testReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://isac-runs/runs/2024/03/0b8f5c1e.json")
}

func TestDisabled(t *testing.T) {
	a, err := New(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.False(t, a.Enabled())
	assert.NoError(t, a.Put(context.Background(), testReport()))
}
