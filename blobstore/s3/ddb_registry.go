package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/roargo/blobstore"
	"github.com/hupe1980/roargo/snapshot"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// ErrConcurrentModification is returned when a concurrent publish is
// detected.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// Registry tracks published snapshot versions in DynamoDB. S3 has no
// compare-and-swap, so concurrent producers rotating a snapshot
// generation need an external arbiter: the registry assigns each
// publish a monotonically increasing version with a conditional write,
// and readers resolve the current snapshot name through Latest.
//
// Table schema:
//   - Partition key: namespace (string) - one logical snapshot stream
//   - Sort key: version (number) - monotonically increasing
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name roargo-snapshots \
//	  --attribute-definitions AttributeName=namespace,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=namespace,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type Registry struct {
	client    DDBClient
	tableName string
	namespace string
}

// NewRegistry creates a snapshot registry over the given table. The
// namespace isolates independent snapshot streams sharing one table,
// e.g. "tenant-a/daily".
func NewRegistry(client DDBClient, tableName, namespace string) *Registry {
	return &Registry{
		client:    client,
		tableName: tableName,
		namespace: namespace,
	}
}

// Entry is one published snapshot version.
type Entry struct {
	Version uint64
	Name    string
	Words   int
	Bytes   int64
	CRC32C  uint32
}

// Publish records a written snapshot as the next version of the
// namespace and returns the version it was assigned. If another
// producer claims the same version first, Publish returns
// ErrConcurrentModification and the caller may retry.
func (r *Registry) Publish(ctx context.Context, info *snapshot.Info) (uint64, error) {
	latest, err := r.latestVersion(ctx)
	if err != nil {
		return 0, err
	}

	version := latest + 1

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"namespace": &types.AttributeValueMemberS{Value: r.namespace},
			"version":   &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"name":      &types.AttributeValueMemberS{Value: info.Name},
			"words":     &types.AttributeValueMemberN{Value: strconv.Itoa(info.Words)},
			"bytes":     &types.AttributeValueMemberN{Value: strconv.FormatInt(info.Bytes, 10)},
			"crc32c":    &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(info.CRC32C), 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return 0, ErrConcurrentModification
		}
		return 0, fmt.Errorf("failed to publish snapshot version: %w", err)
	}

	return version, nil
}

// Latest returns the most recently published entry of the namespace.
// Returns blobstore.ErrNotFound if nothing has been published yet.
func (r *Registry) Latest(ctx context.Context) (*Entry, error) {
	resp, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("#ns = :ns"),
		ExpressionAttributeNames: map[string]string{
			"#ns": "namespace",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ns": &types.AttributeValueMemberS{Value: r.namespace},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot registry: %w", err)
	}

	if len(resp.Items) == 0 {
		return nil, blobstore.ErrNotFound
	}

	return entryFromItem(resp.Items[0])
}

// Get returns a specific published version. Returns
// blobstore.ErrNotFound if the version does not exist.
func (r *Registry) Get(ctx context.Context, version uint64) (*Entry, error) {
	resp, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(version),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot version: %w", err)
	}

	if len(resp.Item) == 0 {
		return nil, blobstore.ErrNotFound
	}

	return entryFromItem(resp.Item)
}

// Forget removes a published version, typically after its blob has
// been deleted during retention pruning. Forgetting a missing version
// is not an error.
func (r *Registry) Forget(ctx context.Context, version uint64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(version),
	})
	if err != nil {
		return fmt.Errorf("failed to forget snapshot version: %w", err)
	}
	return nil
}

func (r *Registry) key(version uint64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"namespace": &types.AttributeValueMemberS{Value: r.namespace},
		"version":   &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
	}
}

// latestVersion returns 0 when nothing has been published.
func (r *Registry) latestVersion(ctx context.Context) (uint64, error) {
	entry, err := r.Latest(ctx)
	if errors.Is(err, blobstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entry.Version, nil
}

func entryFromItem(item map[string]types.AttributeValue) (*Entry, error) {
	entry := &Entry{}

	version, err := numAttr(item, "version")
	if err != nil {
		return nil, err
	}
	entry.Version = version

	nameAttr, ok := item["name"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("invalid name attribute in registry item")
	}
	entry.Name = nameAttr.Value

	words, err := numAttr(item, "words")
	if err != nil {
		return nil, err
	}
	entry.Words = int(words)

	bytes, err := numAttr(item, "bytes")
	if err != nil {
		return nil, err
	}
	entry.Bytes = int64(bytes)

	crc, err := numAttr(item, "crc32c")
	if err != nil {
		return nil, err
	}
	entry.CRC32C = uint32(crc)

	return entry, nil
}

func numAttr(item map[string]types.AttributeValue, name string) (uint64, error) {
	attr, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("invalid %s attribute in registry item", name)
	}
	v, err := strconv.ParseUint(attr.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s attribute: %w", name, err)
	}
	return v, nil
}
