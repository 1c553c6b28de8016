// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration_test

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../../data/migrations"

/*
TestMigrations_Paired requires an up and a down file for every version.
*/
func TestMigrations_Paired(t *testing.T) {
	ups, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := os.Stat(down)
		assert.NoError(t, err, up)
	}
}

/*
TestMigrations_EmailUniqueAmongLiveAccounts keeps users_email_key, the name
reported on duplicate registration, scoped to accounts that are not DELETED.
*/
func TestMigrations_EmailUniqueAmongLiveAccounts(t *testing.T) {
	ups, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	require.NoError(t, err)

	var schema strings.Builder
	for _, up := range ups {
		content, err := os.ReadFile(up)
		require.NoError(t, err)
		schema.Write(content)
		schema.WriteString("\n")
	}

	lastIndex := regexp.MustCompile(`(?i)CREATE UNIQUE INDEX[^;]*users_email_key[^;]*;`).FindAllString(schema.String(), -1)
	require.NotEmpty(t, lastIndex)
	assert.Contains(t, lastIndex[len(lastIndex)-1], "WHERE status <> 'DELETED'")
	assert.Contains(t, schema.String(), "DROP CONSTRAINT IF EXISTS users_email_key")
}
