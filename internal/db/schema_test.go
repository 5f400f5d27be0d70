package db

import (
	"strings"
	"testing"
)

func TestSchemaCoversTables(t *testing.T) {
	schema := Schema()
	for _, table := range Tables {
		if !strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("schema does not create %s", table)
		}
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	for _, line := range strings.Split(Schema(), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "CREATE ") && !strings.Contains(line, "IF NOT EXISTS") {
			t.Errorf("statement is not idempotent: %s", line)
		}
	}
}
