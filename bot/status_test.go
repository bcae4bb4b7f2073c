package bot

import (
	"community-bot/rulestore"
	"community-bot/tickets"
	"community-bot/utils/testutil"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCountsData(t *testing.T) {
	ctx := context.Background()
	svc := NewServices(testConfig(), testutil.OpenDB(t), nil, nil)
	require.NoError(t, svc.Prepare(ctx))
	_, err := svc.Desk.Open(ctx, tickets.OpenRequest{MemberID: "42", Category: "Support", Description: "cannot join"})
	require.NoError(t, err)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(rulestore.SampleRules), st.Rules)
	assert.Equal(t, len(rulestore.SampleRules), st.IndexedRules)
	assert.Equal(t, 1, st.OpenTickets)
	assert.Positive(t, st.DatabaseBytes)
	assert.Equal(t, "sqlite3", st.DBDriver)
	assert.NotEmpty(t, st.System.GoVersion)
}

func TestStatusFailsWhenDatabaseClosed(t *testing.T) {
	db := testutil.OpenDB(t)
	svc := NewServices(testConfig(), db, nil, nil)
	require.NoError(t, db.Close())

	_, err := svc.Status(context.Background())
	assert.Error(t, err)
}
