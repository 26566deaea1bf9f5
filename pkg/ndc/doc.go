// Package ndc models the Native Data Connector wire protocol: query requests,
// rowset responses, explain responses, schema documents, and capabilities.
//
// Every tagged variant in the protocol (fields, aggregates, expressions, comparison
// targets and values, order-by targets, exists-in-collection kinds, arguments) is
// represented as a single struct carrying a Type discriminator plus the fields of
// every arm. Consumers switch on Type and must treat unknown discriminators as
// errors.
//
// Maps whose iteration order is observable in the response (requested fields,
// aggregates, relationship column mappings, schema object fields) are decoded into
// insertion-ordered maps from github.com/wk8/go-ordered-map/v2 so that JSON key
// order from the request is preserved end to end.
//
// Example:
//
//	var req ndc.QueryRequest
//	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//		return err
//	}
//
//	for pair := req.Query.Fields.Oldest(); pair != nil; pair = pair.Next() {
//		fmt.Println(pair.Key, pair.Value.Type)
//	}
package ndc
