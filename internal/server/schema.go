package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// writeRequestSchema is the contract for /api/sheets/write: a reviewer may
// submit a corrected record, but date, store name and tax-included amount
// must be present before anything lands in the workbook.
var writeRequestSchema = map[string]any{
	"type":     "object",
	"required": []any{"date", "storeName", "amountInclTax"},
	"properties": map[string]any{
		"date":            map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"storeName":       map[string]any{"type": "string", "minLength": 1},
		"payer":           map[string]any{"type": "string"},
		"amountExclTax":   map[string]any{"type": []any{"integer", "null"}},
		"amountInclTax":   map[string]any{"type": "integer"},
		"tax":             map[string]any{"type": []any{"integer", "null"}},
		"paymentMethod":   map[string]any{"type": "string"},
		"expenseCategory": map[string]any{"type": "string"},
		"projectName":     map[string]any{"type": "string"},
		"notes":           map[string]any{"type": "string"},
		"receiptImageUrl": map[string]any{"type": "string"},
	},
}

var (
	writeSchemaOnce sync.Once
	writeSchema     *jsonschema.Schema
	writeSchemaErr  error
)

func compiledWriteSchema() (*jsonschema.Schema, error) {
	writeSchemaOnce.Do(func() {
		b, err := json.Marshal(writeRequestSchema)
		if err != nil {
			writeSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("write.json", bytes.NewReader(b)); err != nil {
			writeSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		writeSchema, writeSchemaErr = compiler.Compile("write.json")
	})
	return writeSchema, writeSchemaErr
}

// validateWriteRequest checks the raw body against the write schema.
func validateWriteRequest(data []byte) error {
	schema, err := compiledWriteSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid receipt: %w", err)
	}
	return nil
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
}
