// Package dynamo provides a DynamoDB-backed item store. The table is keyed
// by file_id only; every other lookup the service performs is a full scan,
// paged through ExclusiveStartKey until exhaustion.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/tanagerlabs/birdtag/pkg/birdtag"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements birdtag.ItemStore on a DynamoDB table
type Store struct {
	client API
	table  string
}

// New creates a DynamoDB item store for the given table
func New(client API, table string) *Store {
	return &Store{client: client, table: table}
}

// item is the wire shape of one table row. Tag values round-trip through
// interface{} because rows written by earlier tooling carry numbers, decimal
// confidences, and numeric strings interchangeably.
type item struct {
	FileID        string         `dynamodbav:"file_id"`
	OriginalPath  string         `dynamodbav:"original_s3_path"`
	ThumbnailPath string         `dynamodbav:"thumbnail_s3_path,omitempty"`
	ResultPath    string         `dynamodbav:"result_s3_path,omitempty"`
	Kind          string         `dynamodbav:"file_type"`
	UploadTime    string         `dynamodbav:"upload_time"`
	Tags          map[string]any `dynamodbav:"tags"`
	LastModified  string         `dynamodbav:"last_modified,omitempty"`
}

func toItem(rec *birdtag.MediaRecord) item {
	tags := make(map[string]any, len(rec.Tags))
	for species, count := range rec.Tags {
		tags[species] = count
	}
	it := item{
		FileID:        rec.FileID,
		OriginalPath:  rec.OriginalPath,
		ThumbnailPath: rec.ThumbnailPath,
		ResultPath:    rec.ResultPath,
		Kind:          string(rec.Kind),
		UploadTime:    rec.UploadTime.UTC().Format(time.RFC3339),
		Tags:          tags,
	}
	if !rec.LastModified.IsZero() {
		it.LastModified = rec.LastModified.UTC().Format(time.RFC3339)
	}
	return it
}

func fromItem(it item) *birdtag.MediaRecord {
	rec := &birdtag.MediaRecord{
		FileID:        it.FileID,
		OriginalPath:  it.OriginalPath,
		ThumbnailPath: it.ThumbnailPath,
		ResultPath:    it.ResultPath,
		Kind:          birdtag.MediaKind(it.Kind),
		Tags:          birdtag.NormalizeStoredTags(it.Tags),
	}
	// Timestamps written by earlier tooling are not uniformly formatted;
	// an unparseable one reads back as the zero time.
	if t, err := time.Parse(time.RFC3339, it.UploadTime); err == nil {
		rec.UploadTime = t
	}
	if t, err := time.Parse(time.RFC3339, it.LastModified); err == nil {
		rec.LastModified = t
	}
	return rec
}

func (s *Store) Put(ctx context.Context, rec *birdtag.MediaRecord) error {
	av, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.FileID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return &birdtag.StoreError{Store: s.table, Key: rec.FileID, Op: "put", Err: s.wrap(err)}
	}
	return nil
}

// wrap annotates a missing-table failure with the table name so it is
// distinguishable from a missing row in logs.
func (s *Store) wrap(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException" {
		return fmt.Errorf("table %s does not exist: %w", s.table, err)
	}
	return err
}

func (s *Store) Get(ctx context.Context, fileID string) (*birdtag.MediaRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       fileKey(fileID),
	})
	if err != nil {
		return nil, &birdtag.StoreError{Store: s.table, Key: fileID, Op: "get", Err: s.wrap(err)}
	}
	if len(out.Item) == 0 {
		return nil, birdtag.ErrRecordNotFound
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal record %s: %w", fileID, err)
	}
	return fromItem(it), nil
}

func (s *Store) Delete(ctx context.Context, fileID string) error {
	// Unconditional delete; removing an absent row succeeds.
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       fileKey(fileID),
	})
	if err != nil {
		return &birdtag.StoreError{Store: s.table, Key: fileID, Op: "delete", Err: s.wrap(err)}
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, fn func(*birdtag.MediaRecord) error) error {
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return &birdtag.StoreError{Store: s.table, Op: "scan", Err: s.wrap(err)}
		}
		for _, raw := range out.Items {
			var it item
			if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
				return fmt.Errorf("unmarshal scanned record: %w", err)
			}
			if err := fn(fromItem(it)); err != nil {
				return err
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func fileKey(fileID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"file_id": &types.AttributeValueMemberS{Value: fileID},
	}
}
