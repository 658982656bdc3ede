package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/mock/gomock"
	"github.com/smallbiznis/spendlens/internal/chat/domain"
	"github.com/smallbiznis/spendlens/internal/chat/domain/mock"
	"github.com/smallbiznis/spendlens/internal/chat/repository"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	"github.com/smallbiznis/spendlens/internal/observability/metrics"
	"github.com/smallbiznis/spendlens/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type vendor struct {
	ID   int64
	Name string
}

type fixture struct {
	svc       domain.Service
	db        *gorm.DB
	completer *mock.MockCompleter
	clock     *clock.FakeClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	return newFixtureWithRepo(t, repository.Provide())
}

func newFixtureWithRepo(t *testing.T, repo domain.Repository) fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.ChatHistoryEntry{}, &vendor{}))
	require.NoError(t, conn.Create(&[]vendor{{ID: 1, Name: "Acme"}, {ID: 2, Name: "Globex"}}).Error)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	completer := mock.NewMockCompleter(ctrl)
	completer.EXPECT().Provider().Return("groq").AnyTimes()

	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:        conn,
		Log:       zaptest.NewLogger(t),
		GenID:     node,
		Repo:      repo,
		Completer: completer,
		Config: config.Config{
			LLM:  config.LLMConfig{Temperature: 0.1, MaxTokens: 1000, Timeout: time.Second},
			Chat: config.ChatConfig{ReadOnly: true, QueryTimeout: time.Second},
		},
		Analytics: config.NewStaticAnalyticsConfigHolder(config.AnalyticsConfig{
			HistoryDefaultLimit: 2,
			HistoryMaxLimit:     3,
		}),
		Clock:   fake,
		Metrics: metrics.NewNoop(),
	})

	return fixture{svc: svc, db: conn, completer: completer, clock: fake}
}

// historyDown executes statements normally but cannot write history.
type historyDown struct {
	domain.Repository
}

func (historyDown) InsertHistory(context.Context, *gorm.DB, *domain.ChatHistoryEntry) error {
	return errors.New("chat_history: disk full")
}

func (f fixture) history(t *testing.T) []domain.ChatHistoryEntry {
	t.Helper()
	var rows []domain.ChatHistoryEntry
	require.NoError(t, f.db.Order("created_at ASC").Find(&rows).Error)
	return rows
}

func TestAskExecutesFencedStatement(t *testing.T) {
	f := newFixture(t)

	f.completer.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req domain.CompletionRequest) (domain.Completion, error) {
			assert.Equal(t, SystemPrompt, req.System)
			assert.Equal(t, "Generate a SQL query for:  list vendors ", req.User)
			assert.Equal(t, float32(0.1), req.Temperature)
			assert.Equal(t, 1000, req.MaxTokens)
			return domain.Completion{Text: "Here you go:\n```sql\nSELECT name FROM vendors ORDER BY id;\n```"}, nil
		})

	res, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: " list vendors "})
	require.NoError(t, err)

	assert.Equal(t, " list vendors ", res.Query)
	assert.Equal(t, "SELECT name FROM vendors ORDER BY id;", res.SQL)
	assert.Equal(t, []string{"name"}, res.Columns)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, "Acme", res.Results[0]["name"])

	rows := f.history(t)
	require.Len(t, rows, 1)
	assert.Equal(t, " list vendors ", rows[0].Query)
	require.NotNil(t, rows[0].SQL)
	assert.Equal(t, res.SQL, *rows[0].SQL)
	assert.Nil(t, rows[0].Error)

	var stored []map[string]any
	require.NoError(t, json.Unmarshal(rows[0].Results, &stored))
	assert.Len(t, stored, 2)
}

func TestAskEmptyResultIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{Text: "SELECT name FROM vendors WHERE id = 99"}, nil)

	res, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.RowCount)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
}

func TestAskRejectsBlankQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	assert.Empty(t, f.history(t))
}

func TestAskUpstreamFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{}, errors.New("connection reset"))

	_, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "spend by vendor"})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	rows := f.history(t)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].SQL)
	require.NotNil(t, rows[0].Error)
	assert.Contains(t, *rows[0].Error, "connection reset")
}

func TestAskEmptyCompletionIsUpstreamFailure(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{Text: "  "}, nil)

	_, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "q"})
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestAskExecutionFailureCarriesStatement(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{Text: "```sql\nSELECT * FROM missing_table\n```"}, nil)

	_, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "broken"})
	require.ErrorIs(t, err, domain.ErrQueryExecutionFailed)

	var qerr *domain.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "SELECT * FROM missing_table", qerr.Statement)

	rows := f.history(t)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].SQL)
	assert.Equal(t, "SELECT * FROM missing_table", *rows[0].SQL)
	require.NotNil(t, rows[0].Error)
	assert.JSONEq(t, "null", string(rows[0].Results))
}

func TestAskRejectsWriteStatement(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{Text: "DELETE FROM vendors"}, nil)

	_, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "remove everything"})
	require.ErrorIs(t, err, domain.ErrStatementRejected)
	require.ErrorIs(t, err, domain.ErrQueryExecutionFailed)

	var count int64
	require.NoError(t, f.db.Model(&vendor{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
	assert.Len(t, f.history(t), 1)
}

func TestHistoryNewestFirstWithLimits(t *testing.T) {
	f := newFixture(t)
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{Text: "SELECT id FROM vendors"}, nil).
		Times(4)

	for _, q := range []string{"first", "second", "third", "fourth"} {
		_, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: q})
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	items, err := f.svc.History(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "fourth", items[0].Query)
	assert.Equal(t, "third", items[1].Query)
	require.Len(t, items[0].Results, 2)
	assert.Equal(t, json.Number("1"), items[0].Results[0]["id"])

	items, err = f.svc.History(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = f.svc.History(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidLimit)
}

func TestAskRejectsCommentMarkersInsideLiterals(t *testing.T) {
	replies := []string{
		"```sql\nSELECT '--' AS x FROM vendors; DELETE FROM vendors\n```",
		"```sql\nSELECT '/*' AS a; DELETE FROM vendors; SELECT '*/'\n```",
	}
	for _, reply := range replies {
		f := newFixture(t)
		f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
			Return(domain.Completion{Text: reply}, nil)

		_, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "sneaky"})
		require.ErrorIs(t, err, domain.ErrStatementRejected, reply)

		var count int64
		require.NoError(t, f.db.Model(&vendor{}).Count(&count).Error)
		assert.EqualValues(t, 2, count, reply)
	}
}

func TestAskSucceedsWhenHistoryWriteFails(t *testing.T) {
	f := newFixtureWithRepo(t, historyDown{Repository: repository.Provide()})
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{Text: "SELECT name FROM vendors ORDER BY id"}, nil)

	res, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "list vendors"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowCount)
	assert.Equal(t, "Acme", res.Results[0]["name"])
	assert.Empty(t, f.history(t))
}

func TestAskKeepsOriginalErrorWhenHistoryWriteFails(t *testing.T) {
	f := newFixtureWithRepo(t, historyDown{Repository: repository.Provide()})
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{}, errors.New("connection reset"))
	f.completer.EXPECT().Complete(gomock.Any(), gomock.Any()).
		Return(domain.Completion{Text: "SELECT * FROM missing_table"}, nil)

	_, err := f.svc.Ask(context.Background(), domain.AskRequest{Query: "first"})
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotContains(t, err.Error(), "disk full")

	_, err = f.svc.Ask(context.Background(), domain.AskRequest{Query: "second"})
	require.ErrorIs(t, err, domain.ErrQueryExecutionFailed)
	var qerr *domain.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "SELECT * FROM missing_table", qerr.Statement)
	assert.NotContains(t, err.Error(), "disk full")
}
