package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument("Report.txt", "txt", "content")

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Report.txt", doc.Title)
	assert.Equal(t, "txt", doc.Type)
	assert.Equal(t, "content", doc.Content)

	// Ids are unique per document.
	other := NewDocument("Report.txt", "txt", "content")
	assert.NotEqual(t, doc.ID, other.ID)
}

func TestNewChunkID(t *testing.T) {
	at := time.Unix(0, 1700000000000000000)

	assert.Equal(t, "policy-txt-0-1700000000000000000", NewChunkID("Policy.txt", 0, at))
	assert.Equal(t, "policy-txt-3-1700000000000000000", NewChunkID("Policy.txt", 3, at))

	// Same document ingested later gets different ids.
	later := at.Add(time.Second)
	assert.NotEqual(t, NewChunkID("Policy.txt", 0, at), NewChunkID("Policy.txt", 0, later))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Policy.TXT", "policy-txt"},
		{"collapses runs", "My  Great -- Doc", "my-great-doc"},
		{"keeps digits", "report2024.md", "report2024-md"},
		{"drops leading separators", "--x", "x"},
		{"drops trailing separators", "x--", "x"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugify(tt.in))
		})
	}
}
