package dynamo_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
	"github.com/tanagerlabs/birdtag/pkg/birdtag/store/dynamo"
)

// fakeClient serves scripted responses and records request parameters.
type fakeClient struct {
	items     map[string]map[string]types.AttributeValue
	scanPages []*dynamodb.ScanOutput
	scanCalls []*dynamodb.ScanInput
}

func (f *fakeClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.items == nil {
		f.items = make(map[string]map[string]types.AttributeValue)
	}
	id := params.Item["file_id"].(*types.AttributeValueMemberS).Value
	f.items[id] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	id := params.Key["file_id"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: f.items[id]}, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	id := params.Key["file_id"].(*types.AttributeValueMemberS).Value
	delete(f.items, id)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeClient) Scan(ctx context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanCalls = append(f.scanCalls, params)
	page := f.scanPages[len(f.scanCalls)-1]
	return page, nil
}

func rawItem(t *testing.T, fields map[string]any) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(fields)
	require.NoError(t, err)
	return av
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{}
	store := dynamo.New(client, "BirdMediaMetadata")

	rec := &birdtag.MediaRecord{
		FileID:       "f1",
		OriginalPath: "s3://media/crow.jpg",
		Kind:         birdtag.KindImage,
		Tags:         birdtag.TagMap{"Crow": 2},
	}
	require.NoError(t, store.Put(ctx, rec))

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "s3://media/crow.jpg", got.OriginalPath)
	assert.Equal(t, birdtag.KindImage, got.Kind)
	assert.Equal(t, birdtag.TagMap{"Crow": 2}, got.Tags)
}

func TestGetMissing(t *testing.T) {
	store := dynamo.New(&fakeClient{}, "BirdMediaMetadata")
	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, birdtag.ErrRecordNotFound)
}

func TestGetNormalizesHeterogeneousTagValues(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{items: map[string]map[string]types.AttributeValue{
		"f1": rawItem(t, map[string]any{
			"file_id":          "f1",
			"original_s3_path": "s3://media/dawn.wav",
			"file_type":        "audio",
			"upload_time":      "2025-06-01T12:00:00Z",
			"tags": map[string]any{
				"Corvus brachyrhynchos_American Crow": 0.83,
				"Columba livia_Rock Pigeon":           "2",
				"Turdus merula_Common Blackbird":      3,
			},
		}),
	}}
	store := dynamo.New(client, "BirdMediaMetadata")

	got, err := store.Get(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, birdtag.TagMap{
		"Corvus brachyrhynchos_American Crow": 0,
		"Columba livia_Rock Pigeon":           2,
		"Turdus merula_Common Blackbird":      3,
	}, got.Tags)
	assert.Equal(t, 2025, got.UploadTime.Year())
}

func TestScanFollowsContinuationTokens(t *testing.T) {
	ctx := context.Background()
	cursor := map[string]types.AttributeValue{
		"file_id": &types.AttributeValueMemberS{Value: "a"},
	}
	client := &fakeClient{scanPages: []*dynamodb.ScanOutput{
		{
			Items:            []map[string]types.AttributeValue{rawItem(t, map[string]any{"file_id": "a", "file_type": "image"})},
			LastEvaluatedKey: cursor,
		},
		{
			Items: []map[string]types.AttributeValue{rawItem(t, map[string]any{"file_id": "b", "file_type": "image"})},
		},
	}}
	store := dynamo.New(client, "BirdMediaMetadata")

	var seen []string
	require.NoError(t, store.Scan(ctx, func(rec *birdtag.MediaRecord) error {
		seen = append(seen, rec.FileID)
		return nil
	}))

	assert.Equal(t, []string{"a", "b"}, seen)
	require.Len(t, client.scanCalls, 2)
	assert.Nil(t, client.scanCalls[0].ExclusiveStartKey)
	assert.Equal(t, cursor, client.scanCalls[1].ExclusiveStartKey)
}

func TestDeleteMissingSucceeds(t *testing.T) {
	store := dynamo.New(&fakeClient{}, "BirdMediaMetadata")
	assert.NoError(t, store.Delete(context.Background(), "missing"))
}
