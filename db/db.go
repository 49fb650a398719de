package db

import (
	"context"
	"strconv"

	"github.com/jsphweid/midiscribe/model"
	"github.com/pkg/errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// DynamoDB caps BatchGetItem at 100 keys
const maxBatch = 100

// GetMidiMetadatas looks up title and artist for each file name. Files
// without an entry are left out of the result. An empty endpoint uses the
// default AWS configuration.
func GetMidiMetadatas(ctx context.Context, endpoint, table string, filenames []string) (map[string]model.Metadata, error) {
	res := make(map[string]model.Metadata)
	if len(filenames) == 0 {
		return res, nil
	}

	config := &aws.Config{}
	if endpoint != "" {
		config.Region = aws.String("localhost")
		config.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(config)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a DynamoDB session")
	}
	client := dynamodb.New(sess)

	for start := 0; start < len(filenames); start += maxBatch {
		end := start + maxBatch
		if end > len(filenames) {
			end = len(filenames)
		}
		request := map[string]*dynamodb.KeysAndAttributes{
			table: {Keys: keysFor(filenames[start:end])},
		}
		for len(request) > 0 {
			out, err := client.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, errors.Wrapf(err, "reading metadata from %s", table)
			}
			for _, item := range out.Responses[table] {
				if name, m, ok := ItemToMetadata(item); ok {
					res[name] = m
				}
			}
			request = out.UnprocessedKeys
		}
	}
	return res, nil
}

func keysFor(filenames []string) []map[string]*dynamodb.AttributeValue {
	var keys []map[string]*dynamodb.AttributeValue
	for _, filename := range filenames {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(filename)},
		})
	}
	return keys
}

// ItemToMetadata reads one table item. ok is false when the item has no key.
func ItemToMetadata(item map[string]*dynamodb.AttributeValue) (string, model.Metadata, bool) {
	var m model.Metadata
	pk, found := item["PK"]
	if !found || pk.S == nil {
		return "", m, false
	}
	if v, found := item["Year"]; found && v.N != nil {
		year, _ := strconv.ParseUint(*v.N, 10, 32)
		m.Year = uint(year)
	}
	m.Artist = stringAttr(item, "Artist")
	m.Release = stringAttr(item, "Release")
	m.Title = stringAttr(item, "Title")
	return *pk.S, m, true
}

func stringAttr(item map[string]*dynamodb.AttributeValue, name string) string {
	if v, found := item[name]; found {
		return aws.StringValue(v.S)
	}
	return ""
}
