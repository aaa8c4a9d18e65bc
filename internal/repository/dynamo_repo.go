package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/andy/invoicedesk/internal/domain"
)

// Sort key prefixes within an invoice partition
const (
	signaturePrefix = "sig#"
	envelopePrefix  = "env#"
)

// sortKeyLayout is fixed-width so sort keys order chronologically
const sortKeyLayout = "2006-01-02T15:04:05.000000000Z"

// DynamoAPI is the subset of the DynamoDB client used by DynamoRepo
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	dynamodb.ScanAPIClient
}

// signatureItem is the DynamoDB item for a signature.
// The table has partition key invoiceId and sort key recordedAt.
type signatureItem struct {
	InvoiceID   string `dynamodbav:"invoiceId"`
	RecordedAt  string `dynamodbav:"recordedAt"`
	ClientName  string `dynamodbav:"clientName"`
	ClientEmail string `dynamodbav:"clientEmail"`
	Signature   string `dynamodbav:"signature"`
	SignedAt    string `dynamodbav:"signedAt"` // RFC3339Nano
}

type envelopeItem struct {
	InvoiceID  string `dynamodbav:"invoiceId"`
	RecordedAt string `dynamodbav:"recordedAt"`
	EnvelopeID string `dynamodbav:"envelopeId"`
	Provider   string `dynamodbav:"provider"`
	Status     string `dynamodbav:"status"`
}

// DynamoRepo stores signatures and envelopes in a single DynamoDB table
type DynamoRepo struct {
	client    DynamoAPI
	tableName string
	now       func() time.Time
}

// NewDynamoRepo creates a repository over an existing table
func NewDynamoRepo(client DynamoAPI, tableName string) *DynamoRepo {
	return &DynamoRepo{client: client, tableName: tableName, now: time.Now}
}

// NewDynamoRepoFromConfig builds the DynamoDB client from cfg
func NewDynamoRepoFromConfig(cfg aws.Config, tableName string) *DynamoRepo {
	return NewDynamoRepo(dynamodb.NewFromConfig(cfg), tableName)
}

func (r *DynamoRepo) sortKey(prefix string) string {
	return prefix + r.now().UTC().Format(sortKeyLayout) + "#" + uuid.NewString()
}

func toSignatureItem(sig *domain.Signature, recordedAt string) *signatureItem {
	return &signatureItem{
		InvoiceID:   sig.InvoiceID,
		RecordedAt:  recordedAt,
		ClientName:  sig.ClientName,
		ClientEmail: sig.ClientEmail,
		Signature:   sig.Signature,
		SignedAt:    formatTime(sig.SignedAt),
	}
}

func toDomainSignature(item *signatureItem) (*domain.Signature, error) {
	signedAt, err := parseTime(item.SignedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse signedAt: %w", err)
	}
	return &domain.Signature{
		ClientName:  item.ClientName,
		ClientEmail: item.ClientEmail,
		Signature:   item.Signature,
		SignedAt:    signedAt,
		InvoiceID:   item.InvoiceID,
	}, nil
}

// Append puts a new signature item
func (r *DynamoRepo) Append(ctx context.Context, sig *domain.Signature) error {
	av, err := attributevalue.MarshalMap(toSignatureItem(sig, r.sortKey(signaturePrefix)))
	if err != nil {
		return fmt.Errorf("failed to marshal signature item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}
	return nil
}

// List scans the table and returns signatures ordered by recording time
func (r *DynamoRepo) List(ctx context.Context) ([]*domain.Signature, error) {
	filt := expression.Name("recordedAt").BeginsWith(signaturePrefix)
	expr, err := expression.NewBuilder().WithFilter(filt).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	items := make([]signatureItem, 0)
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan DynamoDB: %w", err)
		}
		var batch []signatureItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal signature items: %w", err)
		}
		items = append(items, batch...)
	}

	sort.Slice(items, func(i, j int) bool {
		return strings.TrimPrefix(items[i].RecordedAt, signaturePrefix) < strings.TrimPrefix(items[j].RecordedAt, signaturePrefix)
	})

	sigs := make([]*domain.Signature, 0, len(items))
	for i := range items {
		sig, err := toDomainSignature(&items[i])
		if err != nil {
			return nil, err
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}

// FindByInvoiceID queries the invoice partition for its earliest signature
func (r *DynamoRepo) FindByInvoiceID(ctx context.Context, invoiceID string) (*domain.Signature, error) {
	keyCond := expression.Key("invoiceId").Equal(expression.Value(invoiceID)).
		And(expression.Key("recordedAt").BeginsWith(signaturePrefix))

	var item signatureItem
	found, err := r.queryFirst(ctx, keyCond, true, &item)
	if err != nil || !found {
		return nil, err
	}
	return toDomainSignature(&item)
}

// SaveEnvelope records an envelope and its current status. A status
// update overwrites the envelope's existing item so it keeps its sort key.
func (r *DynamoRepo) SaveEnvelope(ctx context.Context, rec *EnvelopeRecord) error {
	recordedAt, err := r.envelopeSortKey(ctx, rec)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(&envelopeItem{
		InvoiceID:  rec.InvoiceID,
		RecordedAt: recordedAt,
		EnvelopeID: rec.EnvelopeID,
		Provider:   rec.Provider,
		Status:     rec.Status,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope item: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put item in DynamoDB: %w", err)
	}
	return nil
}

// envelopeSortKey returns the sort key already used for rec's envelope,
// or a fresh one the first time the envelope is saved
func (r *DynamoRepo) envelopeSortKey(ctx context.Context, rec *EnvelopeRecord) (string, error) {
	keyCond := expression.Key("invoiceId").Equal(expression.Value(rec.InvoiceID)).
		And(expression.Key("recordedAt").BeginsWith(envelopePrefix))
	filter := expression.Name("envelopeId").Equal(expression.Value(rec.EnvelopeID))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return "", fmt.Errorf("failed to build expression: %w", err)
	}

	pages := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to query DynamoDB: %w", err)
		}
		if len(page.Items) > 0 {
			var item envelopeItem
			if err := attributevalue.UnmarshalMap(page.Items[0], &item); err != nil {
				return "", fmt.Errorf("failed to unmarshal item: %w", err)
			}
			return item.RecordedAt, nil
		}
	}
	return r.sortKey(envelopePrefix), nil
}

// FindEnvelope returns the latest envelope recorded for invoiceID
func (r *DynamoRepo) FindEnvelope(ctx context.Context, invoiceID string) (*EnvelopeRecord, error) {
	keyCond := expression.Key("invoiceId").Equal(expression.Value(invoiceID)).
		And(expression.Key("recordedAt").BeginsWith(envelopePrefix))

	var item envelopeItem
	found, err := r.queryFirst(ctx, keyCond, false, &item)
	if err != nil || !found {
		return nil, err
	}
	return &EnvelopeRecord{
		EnvelopeID: item.EnvelopeID,
		InvoiceID:  item.InvoiceID,
		Provider:   item.Provider,
		Status:     item.Status,
	}, nil
}

func (r *DynamoRepo) queryFirst(ctx context.Context, keyCond expression.KeyConditionBuilder, forward bool, out any) (bool, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return false, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(forward),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return false, fmt.Errorf("failed to query DynamoDB: %w", err)
	}
	if len(result.Items) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(result.Items[0], out); err != nil {
		return false, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return true, nil
}
