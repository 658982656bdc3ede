package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSQLFencedBlock(t *testing.T) {
	reply := "Here you go:\n```sql\n  SELECT name FROM vendors;  \n```\nAnything else?"
	assert.Equal(t, "SELECT name FROM vendors;", ExtractSQL(reply))
}

func TestExtractSQLFenceTagIsCaseInsensitive(t *testing.T) {
	reply := "```SQL\nSELECT 1\n```"
	assert.Equal(t, "SELECT 1", ExtractSQL(reply))
}

func TestExtractSQLTakesFirstFencedBlock(t *testing.T) {
	reply := "```sql\nSELECT 1\n```\nor\n```sql\nSELECT 2\n```"
	assert.Equal(t, "SELECT 1", ExtractSQL(reply))
}

func TestExtractSQLWithoutSQLFenceStripsMarkers(t *testing.T) {
	cases := map[string]string{
		"SELECT COUNT(*) FROM invoices":    "SELECT COUNT(*) FROM invoices",
		"```\nSELECT * FROM payments\n```": "SELECT * FROM payments",
		"  ```postgres\nSELECT 1```  ":     "postgres\nSELECT 1",
		"no fences at all, just prose":     "no fences at all, just prose",
	}
	for reply, want := range cases {
		assert.Equal(t, want, ExtractSQL(reply), "reply %q", reply)
	}
}

func TestUserPrompt(t *testing.T) {
	assert.Equal(t, "Generate a SQL query for: top vendors", UserPrompt("top vendors"))
}
