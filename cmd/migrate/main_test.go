package main

import (
	"crypto/sha256"
	"fmt"
	"testing"
)

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_create_transactions.sql", true, "0001", "create_transactions"},
		{"0012_add_merchant_index.sql", true, "0012", "add_merchant_index"},
		{"001_invalid.sql", false, "", ""},        // wrong number format
		{"0001_test", false, "", ""},              // missing .sql
		{"0001.sql", false, "", ""},               // missing name
		{"invalid_0001_test.sql", false, "", ""},  // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			matches := migrationFilePattern.FindStringSubmatch(tt.filename)
			if tt.valid {
				if matches == nil {
					t.Fatalf("Expected %s to match pattern", tt.filename)
				}
				if matches[1] != tt.version || matches[2] != tt.name {
					t.Errorf("Got version=%s name=%s, want version=%s name=%s",
						matches[1], matches[2], tt.version, tt.name)
				}
			} else if matches != nil {
				t.Errorf("Expected %s NOT to match pattern, got %v", tt.filename, matches)
			}
		})
	}
}

func TestMigrationChecksumConsistency(t *testing.T) {
	content1 := []byte("CREATE TABLE test (id TEXT);")
	content2 := []byte("CREATE TABLE test (id TEXT);")
	content3 := []byte("CREATE TABLE different (id TEXT);")

	sum1 := fmt.Sprintf("%x", sha256.Sum256(content1))
	sum2 := fmt.Sprintf("%x", sha256.Sum256(content2))
	sum3 := fmt.Sprintf("%x", sha256.Sum256(content3))

	if sum1 != sum2 {
		t.Error("Same content should produce the same checksum")
	}
	if sum1 == sum3 {
		t.Error("Different content should produce different checksums")
	}
}
